// Package simulation provides the practice-scenario generator: a best-effort
// client that turns a completed evaluation and its transcript into a tailored
// correction-roleplay configuration. Generation runs as a fan-out step after
// the evaluation is committed; any failure here is logged and never affects
// the evaluation.
package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dialwise/evalpipe/core"
)

const defaultInstructions = `You design practice roleplays for sales coaching. Given a call evaluation
and its transcript, produce a correction scenario targeting the seller's
weakest moments. Reply with a single JSON object: {"title": "", "persona":
{"name": "", "role": "", "disposition": ""}, "objections": [], "opening": "",
"focus_areas": [], "difficulty": "easy|medium|hard"}.`

// Options configure the generator.
type Options struct {
	Model        anthropic.Model
	Temperature  float64
	MaxTokens    int64
	APIKey       string
	Instructions string
}

// Generator wraps the Anthropic Messages API behind core.ScenarioGenerator.
type Generator struct {
	client *anthropic.Client
	opts   Options
}

var _ core.ScenarioGenerator = (*Generator)(nil)

// NewGenerator creates a generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:        anthropic.ModelClaude3_5Sonnet20241022,
		Temperature:  0.7,
		MaxTokens:    2048,
		Instructions: defaultInstructions,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Generator{client: &client, opts: opts}
}

// NewGeneratorFromClient creates a generator from an existing client.
func NewGeneratorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:        anthropic.ModelClaude3_5Sonnet20241022,
		Temperature:  0.7,
		MaxTokens:    2048,
		Instructions: defaultInstructions,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Generate requests a roleplay configuration for the evaluation. The raw JSON
// config is returned for the caller to persist as a pending scenario.
func (g *Generator) Generate(ctx context.Context, eval *core.Evaluation, transcript, orgID string) (json.RawMessage, error) {
	evalJSON, err := json.Marshal(eval)
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation: %w", err)
	}

	user := fmt.Sprintf("Organization: %s\n\nEvaluation:\n%s\n\nTranscript:\n%s", orgID, evalJSON, transcript)
	params := anthropic.MessageNewParams{
		Model:       g.opts.Model,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: anthropic.Float(g.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: g.opts.Instructions}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var reply strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply.WriteString(block.AsText().Text)
		}
	}
	return decodeConfig(reply.String())
}

// decodeConfig validates that the reply contains a JSON object and returns it
// compacted. Malformed replies are an error the fan-out step logs and drops.
func decodeConfig(reply string) (json.RawMessage, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("generator reply contains no JSON object")
	}
	raw := []byte(reply[start : end+1])
	if !json.Valid(raw) {
		return nil, fmt.Errorf("generator reply is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
