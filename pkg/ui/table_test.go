package ui

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"mdsexport/pkg/tokenstore"
)

func TestRenderTokenTable(t *testing.T) {
	longToken := strings.Repeat("x", 50)

	var buf bytes.Buffer
	RenderTokenTable(&buf, []tokenstore.Token{
		{
			Name:           "misty-meadow",
			Base:           longToken,
			Last:           "short",
			Latest:         "short",
			LeastRemaining: math.Inf(1),
		},
		{
			Name:           "quiet-harbor",
			Base:           "b",
			Last:           "c",
			Latest:         "c",
			LeastRemaining: 42,
		},
	})

	out := buf.String()

	if !strings.Contains(out, "misty-meadow") || !strings.Contains(out, "quiet-harbor") {
		t.Errorf("expected both token names in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Least Remaining") {
		t.Errorf("expected header row in output, got:\n%s", out)
	}
	if strings.Contains(out, longToken) {
		t.Errorf("expected long token to be truncated, got:\n%s", out)
	}
	if !strings.Contains(out, strings.Repeat("x", tokenDisplayWidth)+"...") {
		t.Errorf("expected truncated token with ellipsis, got:\n%s", out)
	}
	if !strings.Contains(out, "∞") {
		t.Errorf("expected infinity watermark for fresh token, got:\n%s", out)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("expected numeric watermark, got:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short"); got != "short" {
		t.Errorf("expected short value unchanged, got %q", got)
	}
	exact := strings.Repeat("a", tokenDisplayWidth)
	if got := truncate(exact); got != exact {
		t.Errorf("expected value at width limit unchanged, got %q", got)
	}
}
