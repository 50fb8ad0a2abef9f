package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/capicuhq/capicu/pkg/pipeline"
)

func TestArtifactBase(t *testing.T) {
	dir := t.TempDir()
	boardFile := filepath.Join(dir, "game.json")
	if err := os.WriteFile(boardFile, []byte(`{"tiles":[{"left":1,"right":1}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	layoutFile := filepath.Join(dir, "game.layout.json")
	if err := os.WriteFile(layoutFile, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{
			name:   "output with format extension stripped",
			output: "chain.svg",
			input:  "ignored",
			want:   "chain",
		},
		{
			name:   "output without extension kept",
			output: "out/result",
			input:  "ignored",
			want:   "out/result",
		},
		{
			name:   "output with foreign extension kept",
			output: "report.pdf",
			input:  "ignored",
			want:   "report.pdf",
		},
		{
			name:   "derived from board file",
			output: "",
			input:  boardFile,
			want:   filepath.Join(dir, "game"),
		},
		{
			name:   "derived from layout file strips layout suffix",
			output: "",
			input:  layoutFile,
			want:   filepath.Join(dir, "game"),
		},
		{
			name:   "shorthand input falls back to chain",
			output: "",
			input:  "6-6 6-4",
			want:   "chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactBase(tt.output, tt.input)
			if got != tt.want {
				t.Errorf("artifactBase(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestRunRenderBoard(t *testing.T) {
	dir := t.TempDir()
	c := New(io.Discard, log.ErrorLevel)

	var opts pipeline.Options
	setCLIDefaults(&opts)
	opts.Formats = []string{pipeline.FormatSVG, pipeline.FormatJSON}

	output := filepath.Join(dir, "out")
	if err := c.runRender(context.Background(), "5-5 5-2 2-0", opts, output, true); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	svg, err := os.ReadFile(output + ".svg")
	if err != nil {
		t.Fatalf("svg artifact not written: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("svg artifact missing <svg element")
	}

	jsonData, err := os.ReadFile(output + ".json")
	if err != nil {
		t.Fatalf("json artifact not written: %v", err)
	}
	if !json.Valid(jsonData) {
		t.Error("json artifact is not valid JSON")
	}
}

func TestRunRenderSingleFormatHonorsOutput(t *testing.T) {
	dir := t.TempDir()
	c := New(io.Discard, log.ErrorLevel)

	var opts pipeline.Options
	setCLIDefaults(&opts)
	opts.Formats = []string{pipeline.FormatDOT}

	output := filepath.Join(dir, "graph.gv")
	if err := c.runRender(context.Background(), "1-1 1-3", opts, output, true); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	dot, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("dot artifact not written at exact output path: %v", err)
	}
	if !bytes.Contains(dot, []byte("graph")) {
		t.Error("dot artifact missing graph declaration")
	}
}

func TestRunRenderFromLayoutFile(t *testing.T) {
	dir := t.TempDir()
	c := New(io.Discard, log.ErrorLevel)

	var opts pipeline.Options
	setCLIDefaults(&opts)

	layoutPath := filepath.Join(dir, "chain.layout.json")
	if err := c.runLayout(context.Background(), "2-2 2-6 6-6", opts, layoutPath, true); err != nil {
		t.Fatalf("runLayout() error: %v", err)
	}

	opts.Formats = []string{pipeline.FormatSVG}
	output := filepath.Join(dir, "chain.svg")
	if err := c.runRender(context.Background(), layoutPath, opts, output, true); err != nil {
		t.Fatalf("runRender() from layout error: %v", err)
	}

	svg, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("svg artifact not written: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("svg artifact missing <svg element")
	}
}
