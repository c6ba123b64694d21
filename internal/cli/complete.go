// Package cli contains the command actions behind the matcha binary.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matcha-sh/matcha/internal/config"
	"github.com/matcha-sh/matcha/internal/display"
	"github.com/matcha-sh/matcha/internal/engine"
	"github.com/matcha-sh/matcha/internal/logger"
	"github.com/matcha-sh/matcha/internal/match"
)

// CompleteParams contains parameters for the Complete command.
type CompleteParams struct {
	Line       string
	Cursor     int
	GrammarDir string
	ConfigPath string
	LogLevel   string
	JSON       bool
}

// jsonCandidate is the machine-readable candidate shape.
type jsonCandidate struct {
	Match       string `json:"match"`
	Display     string `json:"display,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Insert      string `json:"insert"`
	Append      string `json:"append,omitempty"`
}

type jsonResult struct {
	Candidates   []jsonCandidate `json:"candidates"`
	CommonPrefix string          `json:"common_prefix,omitempty"`
}

// Complete runs the engine once for a line and cursor and prints the
// ranked candidates.
func Complete(params CompleteParams) error {
	log := logger.New(params.LogLevel, os.Stderr)

	settings, err := loadSettings(params.ConfigPath)
	if err != nil {
		return err
	}

	cursor := params.Cursor
	if cursor < 0 || cursor > len(params.Line) {
		cursor = len(params.Line)
	}

	eng := engine.New(settings, params.GrammarDir, log)
	defer eng.EndSession()

	result := eng.Complete(params.Line, cursor)

	if params.JSON {
		return printJSON(result)
	}
	fmt.Print(display.Render(result))
	return nil
}

func printJSON(result match.Result) error {
	out := jsonResult{
		Candidates:   make([]jsonCandidate, 0, len(result.Candidates)),
		CommonPrefix: result.CommonPrefix,
	}
	for _, c := range result.Candidates {
		jc := jsonCandidate{
			Match:       c.Text,
			Display:     c.Display,
			Description: c.Description,
			Type:        c.Type.Code(),
			Insert:      c.Insert,
		}
		if c.Append != 0 {
			jc.Append = string(c.Append)
		}
		out.Candidates = append(out.Candidates, jc)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = config.Discover(cwd)
		}
	}
	if path == "" {
		return config.Default(), nil
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
	}
	return settings, nil
}
