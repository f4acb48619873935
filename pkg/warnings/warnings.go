package warnings

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Severity levels for warnings
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Warning represents a pipeline warning
type Warning struct {
	ID        string
	Category  string
	Severity  Severity
	Message   string
	Details   map[string]interface{}
	FirstSeen time.Time
	LastSeen  time.Time
	Count     int
}

// Collector collects and deduplicates warnings raised during pipeline runs
type Collector struct {
	logger      *logrus.Logger
	warnings    map[string]*Warning
	mu          sync.RWMutex
	maxWarnings int
	handlers    []Handler
}

// Handler handles warnings as they are raised
type Handler interface {
	HandleWarning(warning *Warning)
}

// LogHandler logs warnings through logrus
type LogHandler struct {
	logger *logrus.Logger
}

// HandleWarning logs the warning at a level matching its severity
func (h *LogHandler) HandleWarning(warning *Warning) {
	fields := logrus.Fields{
		"warning_id": warning.ID,
		"category":   warning.Category,
		"severity":   warning.Severity.String(),
		"count":      warning.Count,
	}

	for k, v := range warning.Details {
		fields[k] = v
	}

	switch warning.Severity {
	case SeverityCritical:
		h.logger.WithFields(fields).Error(warning.Message)
	case SeverityHigh:
		h.logger.WithFields(fields).Warn(warning.Message)
	case SeverityMedium:
		h.logger.WithFields(fields).Info(warning.Message)
	default:
		h.logger.WithFields(fields).Debug(warning.Message)
	}
}

// NewCollector creates a new warning collector
func NewCollector(logger *logrus.Logger) *Collector {
	c := &Collector{
		logger:      logger,
		warnings:    make(map[string]*Warning),
		maxWarnings: 1000,
		handlers:    []Handler{},
	}

	c.AddHandler(&LogHandler{logger: logger})

	return c
}

// AddHandler adds a warning handler
func (c *Collector) AddHandler(handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Add records a warning and notifies handlers. Repeated warnings with the
// same category and message are counted rather than duplicated.
func (c *Collector) Add(category string, severity Severity, message string, details map[string]interface{}) string {
	warningID := c.generateWarningID(category, message)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.warnings[warningID]; exists {
		existing.Count++
		existing.LastSeen = time.Now()
		existing.Severity = severity
		existing.Details = details

		for _, handler := range c.handlers {
			handler.HandleWarning(existing)
		}
	} else {
		warning := &Warning{
			ID:        warningID,
			Category:  category,
			Severity:  severity,
			Message:   message,
			Details:   details,
			FirstSeen: time.Now(),
			LastSeen:  time.Now(),
			Count:     1,
		}

		if len(c.warnings) >= c.maxWarnings {
			c.pruneOldWarnings()
		}

		c.warnings[warningID] = warning

		for _, handler := range c.handlers {
			handler.HandleWarning(warning)
		}
	}

	return warningID
}

// Get returns a specific warning
func (c *Collector) Get(warningID string) (*Warning, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	warning, exists := c.warnings[warningID]
	if !exists {
		return nil, false
	}

	warningCopy := *warning
	return &warningCopy, true
}

// GetByCategory returns warnings for a specific category
func (c *Collector) GetByCategory(category string) []*Warning {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var categoryWarnings []*Warning
	for _, warning := range c.warnings {
		if warning.Category == category {
			warningCopy := *warning
			categoryWarnings = append(categoryWarnings, &warningCopy)
		}
	}

	return categoryWarnings
}

// GetBySeverity returns warnings of a specific severity or higher
func (c *Collector) GetBySeverity(minSeverity Severity) []*Warning {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var severityWarnings []*Warning
	for _, warning := range c.warnings {
		if warning.Severity >= minSeverity {
			warningCopy := *warning
			severityWarnings = append(severityWarnings, &warningCopy)
		}
	}

	return severityWarnings
}

// Statistics returns warning counts grouped by severity and category
func (c *Collector) Statistics() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	severityCounts := make(map[string]int)
	categoryCounts := make(map[string]int)

	for _, warning := range c.warnings {
		severityCounts[warning.Severity.String()]++
		categoryCounts[warning.Category]++
	}

	return map[string]interface{}{
		"total":       len(c.warnings),
		"by_severity": severityCounts,
		"by_category": categoryCounts,
	}
}

// generateWarningID generates a deterministic warning ID from category and message
func (c *Collector) generateWarningID(category, message string) string {
	key := fmt.Sprintf("%s:%s", category, strings.ToLower(message))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ":", "_")
	return key
}

// pruneOldWarnings drops the oldest warnings when the collector is full
func (c *Collector) pruneOldWarnings() {
	cutoff := time.Now().Add(-24 * time.Hour)

	for id, warning := range c.warnings {
		if warning.LastSeen.Before(cutoff) {
			delete(c.warnings, id)
		}
	}
}

// Common warning categories
const (
	CategorySentimentScoring = "sentiment_scoring"
	CategoryTranscription    = "transcription"
	CategoryConfiguration    = "configuration"
	CategoryMessaging        = "messaging"
	CategoryOutput           = "output"
)

// GlobalCollector is the global warning collector instance
var GlobalCollector *Collector

// InitGlobalCollector initializes the global warning collector
func InitGlobalCollector(logger *logrus.Logger) {
	GlobalCollector = NewCollector(logger)
}

// AddGlobal adds a warning to the global collector
func AddGlobal(category string, severity Severity, message string, details map[string]interface{}) string {
	if GlobalCollector == nil {
		return ""
	}
	return GlobalCollector.Add(category, severity, message, details)
}
