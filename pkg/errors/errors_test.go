package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New("test error")
	if err == nil {
		t.Fatal("New() returned nil")
	}

	if !strings.Contains(err.Error(), "test error") {
		t.Errorf("Expected error message to contain 'test error', got: %s", err.Error())
	}

	if err.Location() == "" {
		t.Error("Location should not be empty")
	}
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("base error")
	err := Wrap(baseErr, "wrapped")

	if err == nil {
		t.Fatal("Wrap() returned nil")
	}

	if !strings.Contains(err.Error(), "wrapped") {
		t.Errorf("Expected error message to contain 'wrapped', got: %s", err.Error())
	}

	if !strings.Contains(err.Error(), "base error") {
		t.Errorf("Expected error message to contain 'base error', got: %s", err.Error())
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != baseErr {
		t.Errorf("Unwrap() returned wrong error: %v", unwrapped)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "wrapped") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWithField(t *testing.T) {
	err := New("test error").WithField("key", "value")

	fields := err.GetFields()
	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}

	if fields["key"] != "value" {
		t.Errorf("Expected field['key'] = 'value', got: %v", fields["key"])
	}
}

func TestWithCode(t *testing.T) {
	err := New("test error").WithCode("TEST_CODE")

	if err.GetCode() != "TEST_CODE" {
		t.Errorf("Expected code 'TEST_CODE', got: %s", err.GetCode())
	}
}

func TestErrorIs(t *testing.T) {
	malformed := NewMalformedSegment(3, "end before start")
	if !errors.Is(malformed, ErrMalformedSegment) {
		t.Error("errors.Is() should return true for ErrMalformedSegment")
	}

	outOfOrder := NewOutOfOrderSegment(1, 5.0, 4.0)
	if !errors.Is(outOfOrder, ErrOutOfOrderSegment) {
		t.Error("errors.Is() should return true for ErrOutOfOrderSegment")
	}

	empty := NewEmptyTranscript("interview.mp3")
	if !errors.Is(empty, ErrEmptyTranscript) {
		t.Error("errors.Is() should return true for ErrEmptyTranscript")
	}

	wrapped := Wrap(ErrInvalidRecord, "builder check failed")
	if !errors.Is(wrapped, ErrInvalidRecord) {
		t.Error("errors.Is() should return true for wrapped ErrInvalidRecord")
	}
}

func TestDomainConstructorsCarryContext(t *testing.T) {
	err := NewOutOfOrderSegment(2, 8.5, 7.25)

	fields := err.GetFields()
	if fields["segment_index"] != 2 {
		t.Errorf("Expected segment_index = 2, got: %v", fields["segment_index"])
	}
	if fields["previous_end"] != 8.5 {
		t.Errorf("Expected previous_end = 8.5, got: %v", fields["previous_end"])
	}

	if err.GetCode() != "OUT_OF_ORDER_SEGMENT" {
		t.Errorf("Expected code OUT_OF_ORDER_SEGMENT, got: %s", err.GetCode())
	}

	if !strings.Contains(err.Error(), "segment 2") {
		t.Errorf("Expected message to name the segment, got: %s", err.Error())
	}
}

func TestNewTranscriptionFailed(t *testing.T) {
	err := NewTranscriptionFailed("whisper", "binary exited with status 1")

	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Error("errors.Is() should return true for ErrTranscriptionFailed")
	}
	if err.GetFields()["provider"] != "whisper" {
		t.Errorf("Expected provider field 'whisper', got: %v", err.GetFields()["provider"])
	}
}

func TestGetErrorCode(t *testing.T) {
	err := NewEmptyTranscript("session_01")
	if GetErrorCode(err) != "EMPTY_TRANSCRIPT" {
		t.Errorf("Expected EMPTY_TRANSCRIPT, got: %s", GetErrorCode(err))
	}

	if GetErrorCode(errors.New("plain")) != "" {
		t.Error("Plain errors should have no code")
	}
}

func TestAsJSON(t *testing.T) {
	err := NewInvalidRecord("trend length mismatch").WithField("expected", 3)

	m := err.AsJSON()
	if m["code"] != "INVALID_RECORD" {
		t.Errorf("Expected code INVALID_RECORD, got: %v", m["code"])
	}
	if m["location"] == "" {
		t.Error("Location should be populated")
	}
}
