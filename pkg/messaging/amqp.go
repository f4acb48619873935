package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"neuronook-server/pkg/analysis"
	"neuronook-server/pkg/config"
	"neuronook-server/pkg/metrics"
)

// RecordEnvelope wraps an analysis record for transport. The envelope
// carries the delivery identity and timestamp so the record itself stays
// reproducible.
type RecordEnvelope struct {
	MessageID   string                   `json:"message_id"`
	PublishedAt time.Time                `json:"published_at"`
	Source      string                   `json:"source"`
	Record      *analysis.AnalysisRecord `json:"record"`
}

// AMQPPublisher handles AMQP connections and record publishing
type AMQPPublisher struct {
	logger    *logrus.Logger
	config    config.MessagingConfig
	conn      *amqp.Connection
	channel   *amqp.Channel
	connected bool
	connMutex sync.RWMutex
	stopChan  chan struct{}
}

// NewAMQPPublisher creates a new AMQP publisher
func NewAMQPPublisher(logger *logrus.Logger, cfg config.MessagingConfig) *AMQPPublisher {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	return &AMQPPublisher{
		logger:   logger,
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Connect establishes a connection to the AMQP server
func (p *AMQPPublisher) Connect() error {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.connected {
		return nil
	}

	if !p.config.IsAMQPEnabled() {
		p.logger.Warn("AMQP_URL or AMQP_QUEUE_NAME not set, record publishing disabled")
		return fmt.Errorf("AMQP URL or queue name not configured")
	}

	// Dial in a goroutine so a hung broker cannot block startup past the
	// configured timeout
	ctx, cancel := context.WithTimeout(context.Background(), p.config.ConnectTimeout)
	defer cancel()

	connChan := make(chan struct {
		conn *amqp.Connection
		err  error
	}, 1)

	go func() {
		conn, err := amqp.Dial(p.config.AMQPUrl)
		select {
		case <-ctx.Done():
			if conn != nil {
				conn.Close()
			}
		case connChan <- struct {
			conn *amqp.Connection
			err  error
		}{conn, err}:
		}
	}()

	var conn *amqp.Connection
	var err error
	select {
	case result := <-connChan:
		conn = result.conn
		err = result.err
	case <-ctx.Done():
		metrics.RecordAMQPConnectionError()
		return fmt.Errorf("connection to AMQP server timed out after %s", p.config.ConnectTimeout)
	}

	if err != nil {
		metrics.RecordAMQPConnectionError()
		return fmt.Errorf("failed to connect to AMQP server: %w", err)
	}

	p.conn = conn

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		metrics.RecordAMQPConnectionError()
		return fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	p.channel = channel

	_, err = channel.QueueDeclare(
		p.config.AMQPQueueName,
		true,  // Durable
		false, // Delete when unused
		false, // Exclusive
		false, // No-wait
		nil,   // Arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		metrics.RecordAMQPConnectionError()
		return fmt.Errorf("failed to declare AMQP queue: %w", err)
	}

	p.connected = true
	p.logger.WithFields(logrus.Fields{
		"url":   p.config.AMQPUrl,
		"queue": p.config.AMQPQueueName,
	}).Info("Connected to AMQP server")

	// Create a new stop channel (in case this is a reconnect)
	p.stopChan = make(chan struct{})

	go p.monitorConnection()

	return nil
}

// Disconnect closes the AMQP connection
func (p *AMQPPublisher) Disconnect() {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if !p.connected {
		return
	}

	close(p.stopChan)

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}

	p.connected = false
	p.logger.Info("Disconnected from AMQP server")
}

// IsConnected returns the connection status
func (p *AMQPPublisher) IsConnected() bool {
	p.connMutex.RLock()
	defer p.connMutex.RUnlock()
	return p.connected
}

// PublishRecord publishes an analysis record to the configured queue.
// Each publish gets a fresh envelope with its own message ID.
func (p *AMQPPublisher) PublishRecord(record *analysis.AnalysisRecord) error {
	if !p.IsConnected() {
		metrics.RecordAMQPPublish("not_connected")
		return fmt.Errorf("not connected to AMQP server")
	}

	envelope := RecordEnvelope{
		MessageID:   uuid.NewString(),
		PublishedAt: time.Now().UTC(),
		Source:      record.Source,
		Record:      record,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		metrics.RecordAMQPPublish("marshal_error")
		return fmt.Errorf("failed to marshal analysis record: %w", err)
	}

	p.connMutex.RLock()
	channel := p.channel
	connected := p.connected
	p.connMutex.RUnlock()

	if !connected || channel == nil {
		metrics.RecordAMQPPublish("not_connected")
		return fmt.Errorf("lost AMQP connection before publishing")
	}

	err = channel.Publish(
		"",                     // Exchange
		p.config.AMQPQueueName, // Routing key
		false,                  // Mandatory
		false,                  // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    envelope.MessageID,
			Timestamp:    envelope.PublishedAt,
		},
	)
	if err != nil {
		metrics.RecordAMQPPublish("error")
		return fmt.Errorf("failed to publish analysis record: %w", err)
	}

	metrics.RecordAMQPPublish("success")
	p.logger.WithFields(logrus.Fields{
		"source":     record.Source,
		"message_id": envelope.MessageID,
	}).Debug("Published analysis record to AMQP")

	return nil
}

// monitorConnection watches for connection loss and reconnects with
// exponential backoff
func (p *AMQPPublisher) monitorConnection() {
	closeChan := make(chan *amqp.Error)

	p.connMutex.RLock()
	if p.conn != nil {
		p.conn.NotifyClose(closeChan)
	}
	p.connMutex.RUnlock()

	for {
		select {
		case <-p.stopChan:
			return
		case closeErr := <-closeChan:
			p.connMutex.Lock()
			p.connected = false
			p.connMutex.Unlock()

			metrics.RecordAMQPConnectionError()
			p.logger.WithError(closeErr).Warn("AMQP connection closed, attempting to reconnect")

			for attempt := 1; attempt <= 10; attempt++ {
				p.logger.WithField("attempt", attempt).Info("Reconnecting to AMQP server")

				if err := p.Connect(); err == nil {
					p.logger.Info("Successfully reconnected to AMQP server")
					return
				} else {
					p.logger.WithError(err).WithField("attempt", attempt).Error("Failed to reconnect to AMQP server")
				}

				// Exponential backoff with max delay of 30 seconds
				backoff := time.Duration(1<<uint(attempt-1)) * time.Second
				if backoff > 30*time.Second {
					backoff = 30 * time.Second
				}

				time.Sleep(backoff)
			}
			return
		}
	}
}
