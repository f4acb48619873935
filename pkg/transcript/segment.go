package transcript

import (
	"strings"

	"neuronook-server/pkg/errors"
)

// RawSegment is a timestamped utterance span as delivered by a
// transcription provider, before validation.
type RawSegment struct {
	StartTime float64 `json:"start"`
	EndTime   float64 `json:"end"`
	Text      string  `json:"text"`
}

// Segment is the canonical, validated utterance span. Segments are
// immutable once produced by Normalize.
type Segment struct {
	StartTime float64 `json:"start"`
	EndTime   float64 `json:"end"`
	Text      string  `json:"text"`
}

// Duration returns the segment length in seconds
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// WordCount returns the number of whitespace-separated tokens in the text
func (s Segment) WordCount() int {
	return len(strings.Fields(s.Text))
}

// Normalize validates a raw segment sequence and produces canonical
// segments. Text is trimmed and internal whitespace collapsed. The
// sequence must be strictly chronological: a segment starting before the
// previous segment ended is rejected with no overlap tolerance.
func Normalize(raw []RawSegment) ([]Segment, error) {
	segments := make([]Segment, 0, len(raw))

	prevEnd := 0.0
	for i, r := range raw {
		if r.StartTime < 0 {
			return nil, errors.NewMalformedSegment(i, "negative start time").
				WithField("start", r.StartTime)
		}
		if r.EndTime <= r.StartTime {
			return nil, errors.NewMalformedSegment(i, "end time not after start time").
				WithFields(map[string]interface{}{
					"start": r.StartTime,
					"end":   r.EndTime,
				})
		}

		text := collapseWhitespace(r.Text)
		if text == "" {
			return nil, errors.NewMalformedSegment(i, "empty text")
		}

		if i > 0 && r.StartTime < prevEnd {
			return nil, errors.NewOutOfOrderSegment(i, prevEnd, r.StartTime)
		}
		prevEnd = r.EndTime

		segments = append(segments, Segment{
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			Text:      text,
		})
	}

	return segments, nil
}

// collapseWhitespace trims the string and squeezes internal runs of
// whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
