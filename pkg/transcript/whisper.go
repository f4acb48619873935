package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/config"
	"neuronook-server/pkg/errors"
	"neuronook-server/pkg/metrics"
)

type whisperRunner func(ctx context.Context, cfg *config.WhisperConfig, audioPath, outputDir string) error

// WhisperProvider uses the open-source Whisper CLI to transcribe audio.
// The binary can run locally or behind an SSH/HTTP wrapper; BinaryPath can
// point to any executable that accepts Whisper CLI arguments.
type WhisperProvider struct {
	logger    *logrus.Logger
	config    *config.WhisperConfig
	runner    whisperRunner
	semaphore chan struct{} // For rate limiting concurrent calls
}

// NewWhisperProvider constructs a Whisper provider backed by the CLI referenced in config.
func NewWhisperProvider(logger *logrus.Logger, cfg *config.WhisperConfig) *WhisperProvider {
	// Determine the concurrency limit
	var semaphore chan struct{}
	maxConcurrent := cfg.MaxConcurrentCalls

	if maxConcurrent == -1 {
		// Auto mode: use number of CPU cores
		maxConcurrent = runtime.NumCPU()
		logger.WithField("max_concurrent", maxConcurrent).Info("Whisper rate limiting set to auto (CPU cores)")
	} else if maxConcurrent > 0 {
		logger.WithField("max_concurrent", maxConcurrent).Info("Whisper rate limiting enabled")
	} else {
		logger.Info("Whisper rate limiting disabled (unlimited concurrent calls)")
	}

	if maxConcurrent > 0 {
		semaphore = make(chan struct{}, maxConcurrent)
	}

	return &WhisperProvider{
		logger:    logger,
		config:    cfg,
		runner:    defaultWhisperRunner,
		semaphore: semaphore,
	}
}

// Name returns the provider identifier.
func (p *WhisperProvider) Name() string {
	return "whisper"
}

// Initialize validates the configuration before the provider is registered.
func (p *WhisperProvider) Initialize() error {
	if p.config == nil {
		return fmt.Errorf("whisper configuration is required")
	}

	if !p.config.Enabled {
		p.logger.Info("Whisper transcription disabled; skipping initialization")
		return nil
	}

	if p.config.BinaryPath == "" {
		return fmt.Errorf("WHISPER_BINARY_PATH must be set when Whisper transcription is enabled")
	}

	// Check if binary exists
	binaryPath, err := exec.LookPath(p.config.BinaryPath)
	if err != nil {
		p.logger.WithError(err).Warn("Whisper binary not found in PATH; transcription may fail at runtime")
	} else {
		// Attempt to verify binary by checking version
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		versionCmd := exec.CommandContext(ctx, binaryPath, "--version")
		output, err := versionCmd.CombinedOutput()
		if err != nil {
			// Version check failed - could be remote server or different whisper implementation
			p.logger.WithError(err).Debug("Could not verify Whisper version (this is normal for remote servers or custom wrappers)")
		} else {
			version := strings.TrimSpace(string(output))
			p.logger.WithField("version", version).Info("Whisper binary version detected")
		}
	}

	p.logger.WithFields(logrus.Fields{
		"binary":   p.config.BinaryPath,
		"model":    p.config.Model,
		"language": p.config.Language,
	}).Info("Whisper provider initialized")
	return nil
}

// Transcribe invokes the Whisper CLI on the audio file and parses the
// timestamped segments from its JSON output.
func (p *WhisperProvider) Transcribe(ctx context.Context, audioPath string) ([]RawSegment, error) {
	if !p.config.Enabled {
		return nil, fmt.Errorf("whisper provider is disabled")
	}

	if _, err := os.Stat(audioPath); err != nil {
		return nil, errors.NewTranscriptionFailed(p.Name(), fmt.Sprintf("audio file not readable: %v", err))
	}

	// Acquire semaphore slot if rate limiting is enabled
	if p.semaphore != nil {
		select {
		case p.semaphore <- struct{}{}:
			defer func() { <-p.semaphore }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	outputDir, err := os.MkdirTemp("", "whisper-output-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper output directory: %w", err)
	}
	defer os.RemoveAll(outputDir)

	runCtx := ctx
	cancel := func() {}
	if p.config.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.config.Timeout)
	}

	// Start metrics timer
	recordDuration := metrics.ObserveTranscriptionDuration(p.Name())

	err = p.runner(runCtx, p.config, audioPath, outputDir)
	cancel()

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			recordDuration("timeout")
		} else {
			recordDuration("error")
		}
		return nil, errors.NewTranscriptionFailed(p.Name(), err.Error())
	}
	recordDuration("success")

	segments, err := p.extractSegments(outputDir, audioPath)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"audio_path": audioPath,
		"provider":   p.Name(),
		"model":      p.config.Model,
		"segments":   len(segments),
	}).Info("Whisper transcription completed")

	return segments, nil
}

func (p *WhisperProvider) extractSegments(outputDir, audioPath string) ([]RawSegment, error) {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	target := filepath.Join(outputDir, base+".json")

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, errors.NewTranscriptionFailed(p.Name(), fmt.Sprintf("failed to read whisper output (%s): %v", target, err))
	}

	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.NewTranscriptionFailed(p.Name(), fmt.Sprintf("failed to parse whisper JSON output: %v", err))
	}

	if len(payload.Segments) == 0 {
		return nil, errors.NewTranscriptionFailed(p.Name(), "whisper output had no segments")
	}

	segments := make([]RawSegment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		segments = append(segments, RawSegment{
			StartTime: seg.Start,
			EndTime:   seg.End,
			Text:      seg.Text,
		})
	}

	return segments, nil
}

func defaultWhisperRunner(ctx context.Context, cfg *config.WhisperConfig, audioPath, outputDir string) error {
	args := []string{audioPath, "--model", cfg.Model, "--output_dir", outputDir, "--output_format", "json"}

	if cfg.Language != "" {
		args = append(args, "--language", cfg.Language)
	}

	if strings.TrimSpace(cfg.ExtraArgs) != "" {
		args = append(args, strings.Fields(cfg.ExtraArgs)...)
	}

	cmd := exec.CommandContext(ctx, cfg.BinaryPath, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("whisper command failed: %w: %s", err, combined.String())
	}
	return nil
}
