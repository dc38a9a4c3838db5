package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dialwise/evalpipe/core"
)

// DecodeScorecard parses the model reply into a scorecard. Replies wrapped in
// markdown code fences or surrounded by prose are tolerated; anything that
// does not contain a decodable scorecard object is an error, which the
// orchestrator treats as fatal.
func DecodeScorecard(reply string) (*core.Scorecard, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return nil, fmt.Errorf("scorer reply contains no JSON object")
	}

	var card core.Scorecard
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		return nil, fmt.Errorf("decode scorecard: %w", err)
	}
	if card.Summary == "" && card.Overall == 0 {
		return nil, fmt.Errorf("scorer reply missing scoring fields")
	}
	return &card, nil
}

// extractJSON returns the outermost JSON object embedded in the reply, or ""
// when none is present.
func extractJSON(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return ""
	}
	return reply[start : end+1]
}

// NormalizeOverall scales a raw aggregate to the canonical 0-100 range.
// Scorer output has been observed on both a 0-10 and a 0-100 scale; values at
// or below 10 are assumed to be on the small scale and multiplied by 10,
// larger values pass through unchanged.
func NormalizeOverall(raw float64) float64 {
	if raw <= 10 {
		return raw * 10
	}
	return raw
}

// TierForScore maps a canonical 0-100 score onto a performance tier.
func TierForScore(score float64) core.Tier {
	switch {
	case score < 40:
		return core.TierPoor
	case score < 55:
		return core.TierNeedsImprovement
	case score < 70:
		return core.TierGood
	case score < 80:
		return core.TierVeryGood
	case score < 90:
		return core.TierExcellent
	default:
		return core.TierLegendary
	}
}
