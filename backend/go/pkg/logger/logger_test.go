package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestWithMethodsDoNotMutateReceiver(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithOutput("test", &buf)

	base.WithField("request", 1).Info("first")
	base.Info("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	var second map[string]interface{}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, ok := second["request"]; ok {
		t.Errorf("field leaked into base logger: %v", second)
	}
}

func TestWithErr(t *testing.T) {
	var buf bytes.Buffer
	NewWithOutput("test", &buf).WithErr(errors.New("boom")).Error("failed")

	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	errField, ok := line["error"].(map[string]interface{})
	if !ok || errField["message"] != "boom" {
		t.Errorf("unexpected error field: %v", line["error"])
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != logrus.DebugLevel {
		t.Error("expected debug level")
	}
	if ParseLevel("loud") != logrus.InfoLevel {
		t.Error("expected fallback to info level")
	}
}

func TestFromContext(t *testing.T) {
	fallback := Discard()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("expected fallback for empty context")
	}
	l := Discard().WithTrace("trace-1", "")
	if got := FromContext(NewContext(context.Background(), l), fallback); got != l {
		t.Error("expected logger stored in context")
	}
}
