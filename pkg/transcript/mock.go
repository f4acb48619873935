package transcript

import (
	"context"

	"github.com/sirupsen/logrus"
)

// MockProvider implements a deterministic transcription provider for
// testing and local development without a Whisper binary.
type MockProvider struct {
	logger   *logrus.Logger
	segments []RawSegment
	err      error
}

// NewMockProvider creates a new mock provider with canned interview segments
func NewMockProvider(logger *logrus.Logger) *MockProvider {
	return &MockProvider{
		logger: logger,
		segments: []RawSegment{
			{StartTime: 0.0, EndTime: 3.2, Text: "So, how have things been since we last spoke?"},
			{StartTime: 3.5, EndTime: 7.8, Text: "Honestly, pretty rough. I feel hopeless about school."},
			{StartTime: 12.0, EndTime: 16.4, Text: "My family doesn't understand me at all."},
			{StartTime: 17.0, EndTime: 21.5, Text: "I'm just tired all the time and I can't focus on anything."},
		},
	}
}

// SetSegments overrides the canned segments
func (p *MockProvider) SetSegments(segments []RawSegment) {
	p.segments = segments
}

// SetError makes Transcribe fail with the given error
func (p *MockProvider) SetError(err error) {
	p.err = err
}

// Name returns the provider name
func (p *MockProvider) Name() string {
	return "mock"
}

// Initialize initializes the mock provider
func (p *MockProvider) Initialize() error {
	p.logger.Info("Mock transcription provider initialized")
	return nil
}

// Transcribe returns the canned segment sequence
func (p *MockProvider) Transcribe(ctx context.Context, audioPath string) ([]RawSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}

	p.logger.WithFields(logrus.Fields{
		"audio_path": audioPath,
		"segments":   len(p.segments),
	}).Info("Mock transcription provider returning canned segments")

	out := make([]RawSegment, len(p.segments))
	copy(out, p.segments)
	return out, nil
}
