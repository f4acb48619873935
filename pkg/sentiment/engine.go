package sentiment

// Engine scores the polarity of a text span. Implementations must be
// deterministic for identical input and safe for concurrent use.
// Scores are expected in [-1.0, 1.0]; callers clamp anything outside.
type Engine interface {
	// Name returns the engine identifier
	Name() string

	// Score returns the polarity of the text, negative for negative
	// polarity. An error marks the span as unscorable, it must not be
	// treated as fatal by callers.
	Score(text string) (float64, error)
}

// StaticEngine returns a fixed score for every input. Used in tests and
// as a stand-in when no real engine is configured.
type StaticEngine struct {
	Value float64
	Err   error
}

// Name returns the engine identifier
func (e *StaticEngine) Name() string { return "static" }

// Score returns the configured value or error
func (e *StaticEngine) Score(text string) (float64, error) {
	if e.Err != nil {
		return 0, e.Err
	}
	return e.Value, nil
}
