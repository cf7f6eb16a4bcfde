package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Start(200)
	progress.Update(100)
	progress.Finish()

	out := buf.String()
	for _, want := range []string{"Progress:", " 50%", "100%", "(200/200)", "it/s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestSimpleProgress_RedrawsOnPercentChange(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Start(1000)
	for i := int64(1); i <= 9; i++ {
		progress.Update(i)
	}
	if n := strings.Count(buf.String(), "\r"); n != 1 {
		t.Errorf("redraws = %d, want 1 while below 1%%", n)
	}
}

func TestSimpleProgress_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Start(0)
	progress.Update(5)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("output = %q, want none", buf.String())
	}
}

func TestSimpleProgress_Error(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Start(10)
	progress.Error(errors.New("test error"))

	if !strings.Contains(buf.String(), "Error: test error") {
		t.Errorf("output = %q", buf.String())
	}
}
