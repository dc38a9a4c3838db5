// Package notes provides the LLM-backed notes extractor using the Anthropic
// Messages API. It turns a transcript plus organization context into
// structured lead and deal notes. The extractor is an optional pipeline
// dependency: failures are logged by the orchestrator and the run proceeds
// with nil notes.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dialwise/evalpipe/core"
	"github.com/dialwise/evalpipe/logging"
)

// MaxCustomPrompts caps the free-text observation prompts included from
// organization configuration.
const MaxCustomPrompts = 10

const defaultInstructions = `You extract structured notes from sales-call transcripts. Group discovered
lead and company facts into sections named after what you found, list
next-step commitments, and assess deal health. Reply with a single JSON
object: {"sections": [{"name": "", "facts": []}], "next_steps":
[{"description": "", "owner": "seller|client|both", "status":
"agreed|suggested|pending"}], "deal_health": {"temperature": "",
"probability": "", "blockers": [], "buying_signals": [], "risk_factors": []}}.`

// Options configure the extractor.
type Options struct {
	Model        anthropic.Model
	Temperature  float64
	MaxTokens    int64
	APIKey       string
	Instructions string
	Logger       logging.Logger
}

// Extractor wraps the Anthropic Messages API behind core.NotesExtractor.
type Extractor struct {
	client *anthropic.Client
	opts   Options
}

var _ core.NotesExtractor = (*Extractor)(nil)

// NewExtractor creates an extractor using the official client.
func NewExtractor(optFns ...func(o *Options)) *Extractor {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Extractor{client: &client, opts: opts}
}

// NewExtractorFromClient creates an extractor from an existing client.
func NewExtractorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Extractor {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Extractor{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:        anthropic.ModelClaude3_5Sonnet20241022,
		Temperature:  0.3,
		MaxTokens:    4096,
		Instructions: defaultInstructions,
		Logger:       logging.NoOpLogger{},
	}
}

// Extract requests structured notes for the transcript, steered by the
// organization context.
func (e *Extractor) Extract(ctx context.Context, transcript string, org *core.OrgContext) (*core.CallNotes, error) {
	params := anthropic.MessageNewParams{
		Model:       e.opts.Model,
		MaxTokens:   e.opts.MaxTokens,
		Temperature: anthropic.Float(e.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: e.opts.Instructions}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(transcript, org))),
		},
	}

	resp, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var reply strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply.WriteString(block.AsText().Text)
		}
	}
	return DecodeNotes(reply.String())
}

// BuildPrompt assembles the user message: organization profile, at most
// MaxCustomPrompts custom observation prompts, then the transcript.
func BuildPrompt(transcript string, org *core.OrgContext) string {
	var b strings.Builder
	if org != nil {
		b.WriteString("Seller organization:\n")
		writeField(&b, "Company", org.Company)
		writeField(&b, "Product", org.Product)
		writeField(&b, "Audience", org.Audience)
		writeField(&b, "Sales model", org.SalesModel)

		prompts := org.CustomPrompts
		if len(prompts) > MaxCustomPrompts {
			prompts = prompts[:MaxCustomPrompts]
		}
		if len(prompts) > 0 {
			b.WriteString("\nCustom observations to look for:\n")
			for _, p := range prompts {
				b.WriteString("- ")
				b.WriteString(p)
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

// DecodeNotes parses the model reply into call notes, tolerating code fences
// and surrounding prose the same way the scorer does.
func DecodeNotes(reply string) (*core.CallNotes, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("notes reply contains no JSON object")
	}

	var notes core.CallNotes
	if err := json.Unmarshal([]byte(reply[start:end+1]), &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return &notes, nil
}
