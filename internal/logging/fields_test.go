package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithCommonAppendsServiceAndVersion(t *testing.T) {
	attrs := WithCommon(nil, "svc", "v1")
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attrs, got %d", len(attrs))
	}
	if attrs[0].Key != FieldService || attrs[0].Value.String() != "svc" {
		t.Fatalf("expected service attr, got %+v", attrs[0])
	}
	if attrs[1].Key != FieldVersion || attrs[1].Value.String() != "v1" {
		t.Fatalf("expected version attr, got %+v", attrs[1])
	}
}

func TestWithCommonSkipsEmpty(t *testing.T) {
	attrs := WithCommon([]slog.Attr{{Key: "existing", Value: slog.StringValue("x")}}, "", "")
	if len(attrs) != 1 || attrs[0].Key != "existing" {
		t.Fatalf("expected original attrs preserved, got %+v", attrs)
	}
}

func TestWithToleratesNilLogger(t *testing.T) {
	if With(nil, "k", "v") != nil {
		t.Fatal("expected nil logger to stay nil")
	}
	Info(nil, "ignored")
	Warn(nil, "ignored")
	Debug(nil, "ignored")
	Error(nil, "ignored", nil)
}

func TestErrorAppendsErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := With(slog.New(slog.NewTextHandler(&buf, nil)), slog.String(FieldSport, "cfb"))
	Error(logger, "fetch failed", errors.New("status 502"))
	out := buf.String()
	if !strings.Contains(out, "sport=cfb") || !strings.Contains(out, FieldError+`="status 502"`) {
		t.Fatalf("expected scoped attrs and error field, got %s", out)
	}
}
