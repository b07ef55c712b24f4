package observability

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLogger_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "prod", "warn")

	l.Info().Msg("dropped")
	l.Warn().Str("stage", "process").Msg("kept")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "kept" || line["stage"] != "process" || line["app"] != "flightdash" {
		t.Fatalf("unexpected fields: %v", line)
	}
}

func TestNewLogger_DevConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "dev", "")
	l.Info().Msg("hello")
	if json.Valid(buf.Bytes()) {
		t.Fatalf("dev logger should not emit JSON: %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Fatalf("missing message: %q", buf.String())
	}
}
