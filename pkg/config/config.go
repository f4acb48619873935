package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"neuronook-server/pkg/errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config represents the complete application configuration
type Config struct {
	HTTP      HTTPConfig      `json:"http"`
	STT       STTConfig       `json:"stt"`
	Analysis  AnalysisConfig  `json:"analysis"`
	Output    OutputConfig    `json:"output"`
	Resources ResourceConfig  `json:"resources"`
	Logging   LoggingConfig   `json:"logging"`
	Messaging MessagingConfig `json:"messaging"`
}

// HTTPConfig holds HTTP server configurations
type HTTPConfig struct {
	// HTTP port
	Port int `json:"port" env:"HTTP_PORT" default:"8080"`

	// Whether HTTP server is enabled
	Enabled bool `json:"enabled" env:"HTTP_ENABLED" default:"false"`

	// Whether metrics endpoint is enabled
	EnableMetrics bool `json:"enable_metrics" env:"HTTP_ENABLE_METRICS" default:"true"`

	// Whether the live analysis feed (websocket) is enabled
	EnableLiveFeed bool `json:"enable_live_feed" env:"HTTP_ENABLE_LIVE_FEED" default:"true"`

	// Read timeout for HTTP requests
	ReadTimeout time.Duration `json:"read_timeout" env:"HTTP_READ_TIMEOUT" default:"10s"`

	// Write timeout for HTTP responses
	WriteTimeout time.Duration `json:"write_timeout" env:"HTTP_WRITE_TIMEOUT" default:"30s"`
}

// STTConfig holds speech-to-text configurations
type STTConfig struct {
	// Default provider to use when none is requested
	DefaultProvider string `json:"default_provider" env:"STT_DEFAULT_PROVIDER" default:"whisper"`

	// Whisper CLI provider configuration
	Whisper WhisperConfig `json:"whisper"`
}

// WhisperConfig holds the Whisper CLI provider configuration
type WhisperConfig struct {
	// Whether the Whisper provider is enabled
	Enabled bool `json:"enabled" env:"WHISPER_ENABLED" default:"true"`

	// Path to the whisper executable
	BinaryPath string `json:"binary_path" env:"WHISPER_BINARY_PATH" default:"whisper"`

	// Model name passed to the CLI (tiny, base, small, medium, large)
	Model string `json:"model" env:"WHISPER_MODEL" default:"base"`

	// Language hint; empty lets Whisper auto-detect
	Language string `json:"language" env:"WHISPER_LANGUAGE" default:"en"`

	// Extra CLI arguments appended verbatim
	ExtraArgs string `json:"extra_args" env:"WHISPER_EXTRA_ARGS"`

	// Timeout for a single transcription run
	Timeout time.Duration `json:"timeout" env:"WHISPER_TIMEOUT" default:"30m"`

	// Maximum concurrent CLI invocations (-1 = CPU cores, 0 = unlimited)
	MaxConcurrentCalls int `json:"max_concurrent_calls" env:"WHISPER_MAX_CONCURRENT" default:"-1"`
}

// AnalysisConfig holds the analysis pipeline configuration
type AnalysisConfig struct {
	// Minimum pause between segments reported as a silence gap, seconds
	SilenceThreshold float64 `json:"silence_threshold" env:"ANALYSIS_SILENCE_THRESHOLD" default:"3.0"`

	// Sentiment engine selection (lexicon, static)
	SentimentEngine string `json:"sentiment_engine" env:"ANALYSIS_SENTIMENT_ENGINE" default:"lexicon"`
}

// OutputConfig holds output writer configurations
type OutputConfig struct {
	// Directory where analysis artifacts are written
	Directory string `json:"directory" env:"OUTPUT_DIR" default:"./analysis"`

	// Whether the clinical summary text file is written
	WriteSummary bool `json:"write_summary" env:"OUTPUT_WRITE_SUMMARY" default:"true"`

	// Whether the sentiment trend series file is written
	WriteTrend bool `json:"write_trend" env:"OUTPUT_WRITE_TREND" default:"true"`

	// Whether the annotated transcript text file is written
	WriteTranscript bool `json:"write_transcript" env:"OUTPUT_WRITE_TRANSCRIPT" default:"true"`

	// Whether the record JSON is indented
	PrettyJSON bool `json:"pretty_json" env:"OUTPUT_PRETTY_JSON" default:"true"`
}

// ResourceConfig holds resource limits
type ResourceConfig struct {
	// Maximum interviews analyzed concurrently in batch mode
	MaxConcurrentAnalyses int `json:"max_concurrent_analyses" env:"MAX_CONCURRENT_ANALYSES" default:"4"`
}

// LoggingConfig holds logging configurations
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `json:"level" env:"LOG_LEVEL" default:"info"`

	// Log format (json, text)
	Format string `json:"format" env:"LOG_FORMAT" default:"text"`

	// Log output file (empty = stdout)
	OutputFile string `json:"output_file" env:"LOG_OUTPUT_FILE"`
}

// MessagingConfig holds messaging configurations
type MessagingConfig struct {
	// AMQP URL; empty disables publishing
	AMQPUrl string `json:"amqp_url" env:"AMQP_URL"`

	// Queue analysis records are published to
	AMQPQueueName string `json:"amqp_queue_name" env:"AMQP_QUEUE_NAME"`

	// Timeout for the initial AMQP connection
	ConnectTimeout time.Duration `json:"connect_timeout" env:"AMQP_CONNECT_TIMEOUT" default:"10s"`
}

// IsAMQPEnabled reports whether record publishing is configured
func (m *MessagingConfig) IsAMQPEnabled() bool {
	return m.AMQPUrl != "" && m.AMQPQueueName != ""
}

// Load reads the configuration from the environment, optionally seeded
// from a .env file
func Load(logger *logrus.Logger) (*Config, error) {
	// Get current working directory
	wd, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Warn("Failed to get current working directory")
		wd = "unknown"
	}

	// Define possible locations for .env file
	possibleEnvFiles := []string{
		".env",                    // Current directory
		"../.env",                 // Parent directory
		filepath.Join(wd, ".env"), // Absolute path
	}

	// Try loading .env file from each possible location
	var loadedFrom string
	var loadErr error

	for _, envFile := range possibleEnvFiles {
		if _, statErr := os.Stat(envFile); statErr == nil {
			absPath, _ := filepath.Abs(envFile)
			logger.WithField("path", absPath).Debug("Attempting to load .env file")

			if loadErr = godotenv.Load(envFile); loadErr == nil {
				loadedFrom = absPath
				break
			}
		}
	}

	// If all attempts failed, try default Load() which uses working directory
	if loadedFrom == "" {
		if loadErr = godotenv.Load(); loadErr == nil {
			if _, statErr := os.Stat(".env"); statErr == nil {
				loadedFrom, _ = filepath.Abs(".env")
			}
		}
	}

	if loadedFrom != "" {
		logger.WithFields(logrus.Fields{
			"working_dir": wd,
			"path":        loadedFrom,
		}).Info("Successfully loaded .env file")
	} else {
		logger.WithField("working_dir", wd).Debug("No .env file found, using environment variables only")
	}

	config := &Config{}

	if err := loadHTTPConfig(logger, &config.HTTP); err != nil {
		return nil, errors.Wrap(err, "failed to load HTTP configuration")
	}

	if err := loadSTTConfig(logger, &config.STT); err != nil {
		return nil, errors.Wrap(err, "failed to load STT configuration")
	}

	if err := loadAnalysisConfig(logger, &config.Analysis); err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}

	if err := loadOutputConfig(logger, &config.Output); err != nil {
		return nil, errors.Wrap(err, "failed to load output configuration")
	}

	if err := loadResourceConfig(logger, &config.Resources); err != nil {
		return nil, errors.Wrap(err, "failed to load resource configuration")
	}

	if err := loadLoggingConfig(logger, &config.Logging); err != nil {
		return nil, errors.Wrap(err, "failed to load logging configuration")
	}

	if err := loadMessagingConfig(logger, &config.Messaging); err != nil {
		return nil, errors.Wrap(err, "failed to load messaging configuration")
	}

	// Validate the complete configuration
	if err := validateConfig(logger, config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	// Ensure required directories exist
	if err := ensureDirectories(config); err != nil {
		return nil, errors.Wrap(err, "failed to create required directories")
	}

	return config, nil
}

// loadHTTPConfig loads the HTTP configuration section
func loadHTTPConfig(logger *logrus.Logger, config *HTTPConfig) error {
	config.Enabled = getEnvBool("HTTP_ENABLED", false)
	config.Port = getEnvInt("HTTP_PORT", 8080)
	config.EnableMetrics = getEnvBool("HTTP_ENABLE_METRICS", true)
	config.EnableLiveFeed = getEnvBool("HTTP_ENABLE_LIVE_FEED", true)
	config.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	config.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)

	if config.Enabled {
		logger.WithField("port", config.Port).Info("HTTP server enabled")
	}

	return nil
}

// loadSTTConfig loads the STT configuration section
func loadSTTConfig(logger *logrus.Logger, config *STTConfig) error {
	config.DefaultProvider = getEnv("STT_DEFAULT_PROVIDER", "whisper")

	config.Whisper.Enabled = getEnvBool("WHISPER_ENABLED", true)
	config.Whisper.BinaryPath = getEnv("WHISPER_BINARY_PATH", "whisper")
	config.Whisper.Model = getEnv("WHISPER_MODEL", "base")
	config.Whisper.Language = getEnv("WHISPER_LANGUAGE", "en")
	config.Whisper.ExtraArgs = getEnv("WHISPER_EXTRA_ARGS", "")
	config.Whisper.Timeout = getEnvDuration("WHISPER_TIMEOUT", 30*time.Minute)
	config.Whisper.MaxConcurrentCalls = getEnvInt("WHISPER_MAX_CONCURRENT", -1)

	logger.WithFields(logrus.Fields{
		"default_provider": config.DefaultProvider,
		"whisper_enabled":  config.Whisper.Enabled,
		"whisper_model":    config.Whisper.Model,
	}).Debug("Configured STT")

	return nil
}

// loadAnalysisConfig loads the analysis configuration section
func loadAnalysisConfig(logger *logrus.Logger, config *AnalysisConfig) error {
	config.SilenceThreshold = getEnvFloat("ANALYSIS_SILENCE_THRESHOLD", 3.0)
	if config.SilenceThreshold <= 0 {
		logger.Warnf("Invalid ANALYSIS_SILENCE_THRESHOLD %.2f, defaulting to 3.0", config.SilenceThreshold)
		config.SilenceThreshold = 3.0
	}

	config.SentimentEngine = getEnv("ANALYSIS_SENTIMENT_ENGINE", "lexicon")
	if config.SentimentEngine != "lexicon" && config.SentimentEngine != "static" {
		logger.Warnf("Unknown ANALYSIS_SENTIMENT_ENGINE '%s', defaulting to 'lexicon'", config.SentimentEngine)
		config.SentimentEngine = "lexicon"
	}

	return nil
}

// loadOutputConfig loads the output configuration section
func loadOutputConfig(logger *logrus.Logger, config *OutputConfig) error {
	config.Directory = getEnv("OUTPUT_DIR", "./analysis")
	config.WriteSummary = getEnvBool("OUTPUT_WRITE_SUMMARY", true)
	config.WriteTrend = getEnvBool("OUTPUT_WRITE_TREND", true)
	config.WriteTranscript = getEnvBool("OUTPUT_WRITE_TRANSCRIPT", true)
	config.PrettyJSON = getEnvBool("OUTPUT_PRETTY_JSON", true)

	logger.WithField("output_dir", config.Directory).Debug("Configured output")

	return nil
}

// loadResourceConfig loads the resource configuration section
func loadResourceConfig(logger *logrus.Logger, config *ResourceConfig) error {
	config.MaxConcurrentAnalyses = getEnvInt("MAX_CONCURRENT_ANALYSES", 4)
	if config.MaxConcurrentAnalyses < 1 {
		logger.Warnf("Invalid MAX_CONCURRENT_ANALYSES %d, defaulting to 4", config.MaxConcurrentAnalyses)
		config.MaxConcurrentAnalyses = 4
	}

	return nil
}

// loadLoggingConfig loads the logging configuration section
func loadLoggingConfig(logger *logrus.Logger, config *LoggingConfig) error {
	// Load log level
	config.Level = getEnv("LOG_LEVEL", "info")

	// Validate log level
	_, err := logrus.ParseLevel(config.Level)
	if err != nil {
		logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to 'info'", config.Level)
		config.Level = "info"
	}

	// Load log format
	config.Format = getEnv("LOG_FORMAT", "text")
	if config.Format != "json" && config.Format != "text" {
		logger.Warn("Invalid LOG_FORMAT, must be 'json' or 'text', defaulting to 'text'")
		config.Format = "text"
	}

	// Load log output file
	config.OutputFile = getEnv("LOG_OUTPUT_FILE", "")

	return nil
}

// loadMessagingConfig loads the messaging configuration section
func loadMessagingConfig(logger *logrus.Logger, config *MessagingConfig) error {
	config.AMQPUrl = getEnv("AMQP_URL", "")
	config.AMQPQueueName = getEnv("AMQP_QUEUE_NAME", "")
	config.ConnectTimeout = getEnvDuration("AMQP_CONNECT_TIMEOUT", 10*time.Second)

	// Both must be set for publishing to be enabled
	if (config.AMQPUrl != "" && config.AMQPQueueName == "") || (config.AMQPUrl == "" && config.AMQPQueueName != "") {
		logger.Warn("Incomplete AMQP configuration: both AMQP_URL and AMQP_QUEUE_NAME must be provided")
	}

	return nil
}

// validateConfig performs cross-section validation
func validateConfig(logger *logrus.Logger, config *Config) error {
	if config.HTTP.Enabled && (config.HTTP.Port < 1 || config.HTTP.Port > 65535) {
		return errors.New(fmt.Sprintf("HTTP port out of range: %d", config.HTTP.Port))
	}

	if config.STT.Whisper.Enabled && config.STT.Whisper.BinaryPath == "" {
		return errors.New("WHISPER_BINARY_PATH must not be empty when Whisper is enabled")
	}

	if config.STT.DefaultProvider == "" {
		logger.Warn("STT_DEFAULT_PROVIDER is empty, falling back to 'whisper'")
		config.STT.DefaultProvider = "whisper"
	}

	return nil
}

// ensureDirectories creates the directories the server writes to
func ensureDirectories(config *Config) error {
	if err := os.MkdirAll(config.Output.Directory, 0755); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to create output directory: %s", config.Output.Directory))
	}
	return nil
}

// ApplyLogging applies the configuration to the logger
func (c *Config) ApplyLogging(logger *logrus.Logger) error {
	// Set log level
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("invalid log level: %s", c.Logging.Level))
	}
	logger.SetLevel(level)

	// Set log format
	if c.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	}

	// Set log output
	if c.Logging.OutputFile != "" {
		f, err := os.OpenFile(c.Logging.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to open log file: %s", c.Logging.OutputFile))
		}
		logger.SetOutput(f)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return nil
}

// Helper function to get an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Helper function to get a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	switch strings.ToLower(value) {
	case "true", "yes", "1", "on":
		return true
	case "false", "no", "0", "off":
		return false
	default:
		return defaultValue
	}
}

// Helper function to get an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// Helper function to get a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getEnvFloat retrieves an environment variable and converts it to float64
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}
