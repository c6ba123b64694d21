package cli

import (
	"fmt"

	"github.com/matcha-sh/matcha/internal/argmatcher"
)

// GrammarValidateParams contains parameters for grammar validation.
type GrammarValidateParams struct {
	Path string
}

// GrammarValidate checks one grammar file against the schema and
// reports author-facing errors.
func GrammarValidate(params GrammarValidateParams) error {
	if params.Path == "" {
		return fmt.Errorf("grammar file path required")
	}
	if err := argmatcher.ValidateFile(params.Path); err != nil {
		return err
	}
	fmt.Printf("✓ %s is a valid grammar\n", params.Path)
	return nil
}

// GrammarListParams contains parameters for listing grammars.
type GrammarListParams struct {
	GrammarDir string
}

// GrammarList prints the commands with registered grammars in the
// grammar directory.
func GrammarList(params GrammarListParams) error {
	reg := argmatcher.NewRegistry()
	for _, err := range reg.LoadDir(params.GrammarDir) {
		fmt.Printf("! %v\n", err)
	}

	commands := reg.Commands()
	if len(commands) == 0 {
		fmt.Println("no grammars registered")
		return nil
	}
	for _, cmd := range commands {
		m := reg.Lookup(cmd)
		fmt.Printf("%s\t%d slots, %d flags\n", cmd, m.SlotCount(), len(m.Flags()))
	}
	return nil
}
