package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0000"},
		{1, "1.0000"},
		{0.3421, "0.3421"},
		{0.12345678, "0.1235"},
		{0.99999, "1.0000"},
	}
	for _, tt := range tests {
		if got := FormatProgress(tt.in); got != tt.want {
			t.Errorf("FormatProgress(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStyleExporter(t *testing.T) {
	sheet := NewStyleSheet()
	e := &StyleExporter{Sheet: sheet}

	e.ObserveProgress(0.5)
	e.ObserveProgress(0.25)
	if got := sheet.Property(ProgressProperty); got != "0.2500" {
		t.Errorf("Expected latest progress 0.2500, got %q", got)
	}
	if got := sheet.Property("--other"); got != "" {
		t.Errorf("Expected empty unknown property, got %q", got)
	}
}

func TestProgressFile(t *testing.T) {
	path := ProgressFilePath(filepath.Join(t.TempDir(), "out.mp4"))
	if !strings.HasSuffix(path, "out.mp4.progress.txt") {
		t.Fatalf("Unexpected sidecar path %s", path)
	}

	pf, err := CreateProgressFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []float64{0, 0.08, 0.1536} {
		pf.ObserveProgress(p)
	}
	if pf.Lines() != 3 {
		t.Errorf("Expected 3 lines, got %d", pf.Lines())
	}
	if err := pf.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "0.0000\n0.0800\n0.1536\n" {
		t.Errorf("Unexpected sidecar content %q", got)
	}
}
