package transcript

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSegmentsFile reads raw segments from a transcript JSON file. Three
// layouts are accepted: a bare array of segments, an object with a
// "chunks" field, or Whisper-style output with a "segments" field.
func LoadSegmentsFile(path string) ([]RawSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var bare []RawSegment
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Chunks   []RawSegment `json:"chunks"`
		Segments []RawSegment `json:"segments"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse transcript file %s: %w", path, err)
	}

	if len(wrapped.Chunks) > 0 {
		return wrapped.Chunks, nil
	}
	return wrapped.Segments, nil
}
