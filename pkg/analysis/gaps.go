package analysis

import "neuronook-server/pkg/transcript"

// DefaultSilenceThreshold is the minimum pause between adjacent segments
// that counts as a silence gap, in seconds.
const DefaultSilenceThreshold = 3.0

// GapScanner detects silence gaps between adjacent segments. The bound
// is inclusive: a pause exactly equal to the threshold is a gap.
type GapScanner struct {
	threshold float64
}

// NewGapScanner creates a scanner with the given threshold in seconds.
// Non-positive thresholds fall back to the default.
func NewGapScanner(threshold float64) *GapScanner {
	if threshold <= 0 {
		threshold = DefaultSilenceThreshold
	}
	return &GapScanner{threshold: threshold}
}

// Threshold returns the configured threshold in seconds
func (s *GapScanner) Threshold() float64 {
	return s.threshold
}

// Scan returns a fresh iterator over the silence gaps in the segment
// sequence. Gaps are produced lazily in chronological order; calling
// Scan again restarts from the beginning. No gap is produced before the
// first segment or after the last.
func (s *GapScanner) Scan(segments []transcript.Segment) *GapIterator {
	return &GapIterator{
		segments:  segments,
		threshold: s.threshold,
		next:      1,
	}
}

// Detect drains a fresh iterator into a slice
func (s *GapScanner) Detect(segments []transcript.Segment) []SilenceGap {
	gaps := []SilenceGap{}
	it := s.Scan(segments)
	for {
		gap, ok := it.Next()
		if !ok {
			break
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

// GapIterator walks adjacent segment pairs left to right
type GapIterator struct {
	segments  []transcript.Segment
	threshold float64
	next      int
}

// Next returns the next silence gap, or false when the scan is done
func (it *GapIterator) Next() (SilenceGap, bool) {
	for it.next < len(it.segments) {
		prev := it.segments[it.next-1]
		curr := it.segments[it.next]
		it.next++

		gap := curr.StartTime - prev.EndTime
		if gap >= it.threshold {
			return SilenceGap{
				GapStart: prev.EndTime,
				GapEnd:   curr.StartTime,
				Duration: gap,
			}, true
		}
	}
	return SilenceGap{}, false
}
