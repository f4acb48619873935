package transcript

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/errors"
)

// Transcriber defines the interface for speech-to-text providers that
// turn an interview recording into timestamped raw segments.
type Transcriber interface {
	// Initialize initializes the provider with any required configuration
	Initialize() error

	// Name returns the provider name
	Name() string

	// Transcribe converts the audio file at audioPath into a
	// chronologically ordered raw segment sequence
	Transcribe(ctx context.Context, audioPath string) ([]RawSegment, error)
}

// ProviderManager manages all transcription providers
type ProviderManager struct {
	logger          *logrus.Logger
	providers       map[string]Transcriber
	defaultProvider string
}

// NewProviderManager creates a new provider manager
func NewProviderManager(logger *logrus.Logger, defaultProvider string) *ProviderManager {
	return &ProviderManager{
		logger:          logger,
		providers:       make(map[string]Transcriber),
		defaultProvider: defaultProvider,
	}
}

// RegisterProvider registers a transcription provider
func (m *ProviderManager) RegisterProvider(provider Transcriber) error {
	// Try to initialize the provider
	if err := provider.Initialize(); err != nil {
		m.logger.WithFields(logrus.Fields{
			"provider": provider.Name(),
			"error":    err,
		}).Error("Failed to initialize transcription provider")
		return err
	}

	m.providers[provider.Name()] = provider
	m.logger.WithField("provider", provider.Name()).Info("Registered transcription provider")

	return nil
}

// GetProvider returns a provider by name
func (m *ProviderManager) GetProvider(name string) (Transcriber, bool) {
	provider, exists := m.providers[name]
	return provider, exists
}

// GetDefaultProvider returns the default provider
func (m *ProviderManager) GetDefaultProvider() (Transcriber, bool) {
	return m.GetProvider(m.defaultProvider)
}

// TranscribeWith runs the named provider against an audio file, falling
// back to the default provider when the name is unknown.
func (m *ProviderManager) TranscribeWith(ctx context.Context, providerName, audioPath string) ([]RawSegment, error) {
	startTime := time.Now()

	m.logger.WithFields(logrus.Fields{
		"audio_path": audioPath,
		"provider":   providerName,
	}).Info("Starting transcription")

	provider, exists := m.GetProvider(providerName)
	if !exists {
		m.logger.WithFields(logrus.Fields{
			"audio_path":       audioPath,
			"provider":         providerName,
			"default_provider": m.defaultProvider,
		}).Warn("Provider not found, falling back to default")

		provider, exists = m.GetDefaultProvider()
		if !exists {
			return nil, errors.ErrNoProviderAvailable
		}
	}

	segments, err := provider.Transcribe(ctx, audioPath)

	elapsed := time.Since(startTime)
	m.logger.WithFields(logrus.Fields{
		"audio_path":  audioPath,
		"provider":    provider.Name(),
		"segments":    len(segments),
		"duration_ms": elapsed.Milliseconds(),
		"error":       err != nil,
	}).Info("Transcription completed")

	return segments, err
}
