package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/matcha-sh/matcha/internal/engine"
	"github.com/matcha-sh/matcha/internal/line"
	"github.com/matcha-sh/matcha/internal/logger"
)

// ClassifyParams contains parameters for the Classify command.
type ClassifyParams struct {
	Line       string
	Cursor     int
	GrammarDir string
	ConfigPath string
	LogLevel   string
}

// Classify prints the classification code for each word of the line,
// the same codes the renderer uses for coloring.
func Classify(params ClassifyParams) error {
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

	codes := eng.Classify(params.Line, cursor)
	ls := line.Parse(params.Line, cursor)

	indices := make([]int, 0, len(codes))
	for i := range codes {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		fmt.Printf("%d\t%s\t%s\n", i, codes[i], ls.Word(i, line.Unquoted))
	}
	return nil
}
