package recording

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dialwise/evalpipe/core"
)

// segment container keys probed, in order, when the payload is not itself an
// array. Providers have shipped all of these at one time or another.
var containerKeys = []string{"transcript", "segments", "results", "data"}

// speaker keys probed, in order, on each segment entry.
var speakerKeys = []string{"participant.name", "speaker", "speaker_name", "name"}

// timestamp keys probed, in order, on each segment entry.
var timestampKeys = []string{"timestamp", "start_timestamp.absolute", "start_timestamp", "start_time", "start"}

// ParseSegments converts a provider transcript payload into ordered canonical
// segments. It tries a list of known shapes per entry and drops anything it
// cannot recognize; malformed input yields an empty slice, never an error.
// Segments whose normalized text is empty are dropped.
func ParseSegments(payload []byte) []core.TranscriptSegment {
	root := gjson.ParseBytes(payload)

	items := root
	if !root.IsArray() {
		for _, key := range containerKeys {
			if v := root.Get(key); v.IsArray() {
				items = v
				break
			}
		}
		if !items.IsArray() {
			return nil
		}
	}

	var out []core.TranscriptSegment
	items.ForEach(func(_, item gjson.Result) bool {
		if seg, ok := parseSegment(item); ok {
			out = append(out, seg)
		}
		return true
	})
	return out
}

// parseSegment extracts one canonical segment from a provider entry, probing
// the known speaker/text/timestamp key variants in order.
func parseSegment(item gjson.Result) (core.TranscriptSegment, bool) {
	if !item.IsObject() {
		return core.TranscriptSegment{}, false
	}

	text := normalizeText(item.Get("text").String())
	if text == "" {
		// word-list shape: {"participant": ..., "words": [{"text": ...}, ...]}
		words := item.Get("words")
		if words.IsArray() {
			var parts []string
			words.ForEach(func(_, w gjson.Result) bool {
				if t := normalizeText(w.Get("text").String()); t != "" {
					parts = append(parts, t)
				}
				return true
			})
			text = strings.Join(parts, " ")
		}
	}
	if text == "" {
		return core.TranscriptSegment{}, false
	}

	seg := core.TranscriptSegment{
		Speaker:   firstString(item, speakerKeys),
		Text:      text,
		Timestamp: firstString(item, timestampKeys),
		IsPartial: item.Get("is_partial").Bool() || item.Get("partial").Bool(),
	}
	if seg.Timestamp == "" {
		seg.Timestamp = firstString(item.Get("words.0"), timestampKeys)
	}
	if seg.Speaker == "" {
		seg.Speaker = "unknown"
	}
	return seg, true
}

func firstString(item gjson.Result, keys []string) string {
	for _, key := range keys {
		if v := item.Get(key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// normalizeText collapses internal whitespace and trims the result.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
