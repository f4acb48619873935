package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/analysis"
	"neuronook-server/pkg/batch"
	"neuronook-server/pkg/config"
	http_server "neuronook-server/pkg/http"
	"neuronook-server/pkg/messaging"
	"neuronook-server/pkg/metrics"
	"neuronook-server/pkg/report"
	"neuronook-server/pkg/sentiment"
	"neuronook-server/pkg/transcript"
	"neuronook-server/pkg/version"
	"neuronook-server/pkg/warnings"
)

var (
	logger    = logrus.New()
	appConfig *config.Config

	providerManager *transcript.ProviderManager
	pipeline        *analysis.Pipeline
	reportWriter    *report.Writer
	amqpPublisher   *messaging.AMQPPublisher
	httpServer      *http_server.Server
	feedHub         *http_server.AnalysisHub

	// Context for graceful shutdown
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

func main() {
	providerFlag := flag.String("provider", "", "transcription provider to use for audio inputs (default from config)")
	serveFlag := flag.Bool("serve", false, "keep running after the batch and serve the HTTP endpoints")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("neuronook-server " + version.Version)
		return
	}

	// Basic logger setup until the configuration is applied
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	logger.SetOutput(os.Stdout)

	rootCtx, rootCancel = context.WithCancel(context.Background())
	defer rootCancel()

	if err := initialize(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}

	inputs := flag.Args()
	if len(inputs) == 0 && !appConfig.HTTP.Enabled {
		logger.Fatal("No input files given and HTTP server disabled, nothing to do")
	}

	// Graceful shutdown handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		logger.WithField("signal", sig.String()).Info("Received shutdown signal, cleaning up...")
		rootCancel()
	}()

	if len(inputs) > 0 {
		runBatch(inputs, *providerFlag)
	}

	if appConfig.HTTP.Enabled && (*serveFlag || len(inputs) == 0) {
		// Serve until the shutdown signal arrives
		<-rootCtx.Done()
	}

	shutdown()
}

// initialize loads configuration and wires all components
func initialize() error {
	var err error

	appConfig, err = config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := appConfig.ApplyLogging(logger); err != nil {
		return fmt.Errorf("failed to apply logging configuration: %w", err)
	}
	logger.WithField("level", logger.GetLevel().String()).Info("Log level set")

	metrics.Init(logger)
	warnings.InitGlobalCollector(logger)

	// Sentiment engine
	var engine sentiment.Engine
	switch appConfig.Analysis.SentimentEngine {
	case "static":
		engine = &sentiment.StaticEngine{}
	default:
		engine = sentiment.NewLexiconEngine(logger)
	}
	logger.WithField("engine", engine.Name()).Info("Sentiment engine selected")

	pipeline = analysis.NewPipeline(logger, engine, warnings.GlobalCollector, appConfig.Analysis.SilenceThreshold)
	reportWriter = report.NewWriter(logger, appConfig.Output)

	// Transcription providers
	providerManager = transcript.NewProviderManager(logger, appConfig.STT.DefaultProvider)

	if appConfig.STT.Whisper.Enabled {
		whisper := transcript.NewWhisperProvider(logger, &appConfig.STT.Whisper)
		if err := providerManager.RegisterProvider(whisper); err != nil {
			logger.WithError(err).Warn("Whisper provider failed to initialize, audio inputs will not be transcribable")
			warnings.AddGlobal(warnings.CategoryTranscription, warnings.SeverityHigh,
				"Whisper provider failed to initialize", map[string]interface{}{"error": err.Error()})
		}
	}

	mock := transcript.NewMockProvider(logger)
	if err := providerManager.RegisterProvider(mock); err != nil {
		return fmt.Errorf("failed to register mock provider: %w", err)
	}

	// Record publishing
	if appConfig.Messaging.IsAMQPEnabled() {
		amqpPublisher = messaging.NewAMQPPublisher(logger, appConfig.Messaging)
		if err := amqpPublisher.Connect(); err != nil {
			logger.WithError(err).Warn("AMQP connection failed, records will not be published")
			warnings.AddGlobal(warnings.CategoryMessaging, warnings.SeverityMedium,
				"AMQP connection failed", map[string]interface{}{"error": err.Error()})
			amqpPublisher = nil
		}
	} else {
		logger.Info("AMQP publishing disabled")
	}

	// HTTP endpoints and live feed
	if appConfig.HTTP.Enabled {
		httpServer = http_server.NewServer(logger, appConfig.HTTP)
		if appConfig.HTTP.EnableLiveFeed {
			feedHub = http_server.NewAnalysisHub(logger)
			httpServer.SetAnalysisHub(feedHub)
			go feedHub.Run(rootCtx)
		}
		httpServer.Start()
	}

	return nil
}

// runBatch analyzes every input file with bounded concurrency
func runBatch(inputs []string, provider string) {
	if provider == "" {
		provider = appConfig.STT.DefaultProvider
	}

	runner := batch.NewRunner(logger, appConfig.Resources.MaxConcurrentAnalyses,
		func(ctx context.Context, path string) (*analysis.AnalysisRecord, error) {
			return processFile(ctx, path, provider)
		})

	results := runner.Run(rootCtx, inputs)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			logger.WithFields(logrus.Fields{
				"path":  result.Path,
				"error": result.Err,
			}).Error("Analysis failed")
		}
	}

	logger.WithFields(logrus.Fields{
		"files":  len(results),
		"failed": failed,
	}).Info("All inputs processed")
}

// processFile runs one interview through transcription, analysis and output
func processFile(ctx context.Context, path, provider string) (*analysis.AnalysisRecord, error) {
	var (
		raw []transcript.RawSegment
		err error
	)

	// Segment JSON files skip transcription; everything else is audio
	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err = transcript.LoadSegmentsFile(path)
	} else {
		raw, err = providerManager.TranscribeWith(ctx, provider, path)
	}
	if err != nil {
		metrics.RecordRecordBuilt("error")
		return nil, err
	}

	record, err := pipeline.Analyze(filepath.Base(path), raw)
	if err != nil {
		metrics.RecordRecordBuilt("error")
		return nil, err
	}
	metrics.RecordRecordBuilt("success")

	if _, err := reportWriter.WriteAll(record); err != nil {
		warnings.AddGlobal(warnings.CategoryOutput, warnings.SeverityMedium,
			"Failed to write report artifacts", map[string]interface{}{
				"source": record.Source,
				"error":  err.Error(),
			})
		return record, err
	}

	if amqpPublisher != nil {
		if err := amqpPublisher.PublishRecord(record); err != nil {
			warnings.AddGlobal(warnings.CategoryMessaging, warnings.SeverityMedium,
				"Failed to publish analysis record", map[string]interface{}{
					"source": record.Source,
					"error":  err.Error(),
				})
		}
	}

	if feedHub != nil {
		feedHub.BroadcastRecord(record)
	}

	return record, nil
}

// shutdown stops the long-lived components
func shutdown() {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error shutting down HTTP server")
		} else {
			logger.Info("HTTP server shut down successfully")
		}
	}

	if amqpPublisher != nil {
		amqpPublisher.Disconnect()
	}

	logger.Info("Application shut down gracefully")
}
