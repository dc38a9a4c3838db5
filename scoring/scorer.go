// Package scoring provides the LLM-backed evaluation scorer using the OpenAI
// Chat Completions API. It sends the flattened transcript to the scoring
// model and decodes the structured scorecard from the reply. The scorer is a
// required pipeline dependency: any failure here is fatal to the run.
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"

	"github.com/dialwise/evalpipe/core"
	"github.com/dialwise/evalpipe/logging"
)

// defaultInstructions is a minimal stand-in system prompt. Deployments
// override it with their tuned scoring prompt via Options.Instructions; the
// pipeline treats the content as opaque either way.
const defaultInstructions = `You are a sales-call evaluator. Score the call on the four SPIN dimensions
(situation, problem, implication, need_payoff) with sub-indicator scores 0-10,
score each objection handled, identify the seller and client, and reply with a
single JSON object: {"objection_scores": {...}, "spin": {"situation": {"score":
0, "indicators": {...}}, ...}, "overall": 0, "summary": "", "strengths": [],
"gaps": [], "priority_actions": [], "speakers": {"seller": "", "client": ""}}.`

// Options configure the scorer.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	Instructions        string
	Logger              logging.Logger
}

// Scorer wraps the OpenAI Chat Completions API behind core.Scorer.
type Scorer struct {
	client *openai.Client
	opts   Options
}

var _ core.Scorer = (*Scorer)(nil)

// NewScorer creates a scorer using the official client (API key from env).
func NewScorer(optFns ...func(o *Options)) *Scorer {
	client := openai.NewClient()
	return NewScorerFromClient(&client, optFns...)
}

// NewScorerFromClient creates a scorer from an existing client.
func NewScorerFromClient(client *openai.Client, optFns ...func(o *Options)) *Scorer {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 4096,
		Instructions:        defaultInstructions,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scorer{client: client, opts: opts}
}

// Score sends the transcript to the scoring model and returns the decoded
// scorecard. The returned overall score is raw; the orchestrator normalizes
// it to the canonical 0-100 range.
func (s *Scorer) Score(ctx context.Context, transcript, orgID string) (*core.Scorecard, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.opts.Instructions),
			openai.UserMessage(fmt.Sprintf("Organization: %s\n\nTranscript:\n%s", orgID, transcript)),
		},
		Model:               s.opts.Model,
		Temperature:         openai.Float(s.opts.Temperature),
		MaxCompletionTokens: openai.Int(s.opts.MaxCompletionTokens),
	}

	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		s.logLLMCall(start, false, err)
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		s.logLLMCall(start, false, nil)
		return nil, fmt.Errorf("no choices returned")
	}

	card, err := DecodeScorecard(resp.Choices[0].Message.Content)
	s.logLLMCall(start, err == nil, err)
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *Scorer) logLLMCall(start time.Time, success bool, err error) {
	if pl, ok := s.opts.Logger.(*logging.PipelineLogger); ok {
		pl.LogLLMCall(s.opts.Model, time.Since(start), success, err)
		return
	}
	if success {
		s.opts.Logger.Debug("scorer call completed", "model", s.opts.Model, "duration", time.Since(start))
	}
}
