package argmatcher

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/matcha-sh/matcha/internal/match"
)

//go:embed schema.json
var schemaJSON string

// GetSchemaJSON returns the JSON Schema for grammar files.
func GetSchemaJSON() string {
	return schemaJSON
}

// grammarFile is the on-disk shape of a declarative grammar.
type grammarFile struct {
	Command       string      `yaml:"command"`
	Description   string      `yaml:"description"`
	FlagPrefix    string      `yaml:"flag_prefix"`
	EndOfFlags    string      `yaml:"end_of_flags"`
	FlagsAnywhere *bool       `yaml:"flags_anywhere"`
	NoFiles       bool        `yaml:"nofiles"`
	Loop          int         `yaml:"loop"`
	Chain         bool        `yaml:"chain"`
	Flags         []flagEntry `yaml:"flags"`
	Args          []slotEntry `yaml:"args"`
}

type flagEntry struct {
	Flag   string `yaml:"flag"`
	Desc   string `yaml:"desc"`
	Hidden bool   `yaml:"hidden"`
}

type slotEntry struct {
	Values []valueEntry `yaml:"values"`
}

// valueEntry is either a bare string or an object with value/desc/type.
type valueEntry struct {
	Value string
	Desc  string
	Type  string
}

// UnmarshalYAML accepts both forms.
func (v *valueEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&v.Value)
	}
	var obj struct {
		Value string `yaml:"value"`
		Desc  string `yaml:"desc"`
		Type  string `yaml:"type"`
	}
	if err := node.Decode(&obj); err != nil {
		return err
	}
	v.Value, v.Desc, v.Type = obj.Value, obj.Desc, obj.Type
	return nil
}

// ValidateFile checks a grammar file against the schema without
// registering it. Errors are meant for the grammar author.
func ValidateFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read grammar file: %w", err)
	}
	return validateContent(path, content)
}

func validateContent(path string, content []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("%s: invalid YAML syntax: %w", path, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	docLoader := gojsonschema.NewGoLoader(normalizeForSchema(doc))

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("%s: schema validation failed: %w", path, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%s: invalid grammar: %s", path, strings.Join(msgs, "; "))
	}
	return nil
}

// normalizeForSchema converts YAML's map[interface{}]interface{} nesting
// into the map[string]interface{} shape gojsonschema expects.
func normalizeForSchema(doc interface{}) interface{} {
	switch v := doc.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[fmt.Sprintf("%v", key)] = normalizeForSchema(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = normalizeForSchema(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = normalizeForSchema(val)
		}
		return out
	default:
		return doc
	}
}

// Load reads, validates and registers one grammar file.
func (r *Registry) Load(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read grammar file: %w", err)
	}
	if err := validateContent(path, content); err != nil {
		return err
	}

	var gf grammarFile
	if err := yaml.Unmarshal(content, &gf); err != nil {
		return fmt.Errorf("%s: failed to parse grammar: %w", path, err)
	}

	m, err := gf.build()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return r.Register(gf.Command, m)
}

// LoadDir registers every *.yml/*.yaml grammar in dir. A missing dir is
// not an error; a broken grammar is reported but does not stop the
// rest from loading.
func (r *Registry) LoadDir(dir string) []error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yml" || ext == ".yaml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := r.Load(filepath.Join(dir, name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// build turns the file shape into a Matcher. Static values run through
// text/template with the sprig function map, so grammars can say
// things like {{ env "HOME" }}.
func (gf *grammarFile) build() (*Matcher, error) {
	m := New()

	if gf.FlagPrefix != "" {
		m.SetFlagPrefix(gf.FlagPrefix)
	}
	if gf.EndOfFlags != "" {
		m.SetEndOfFlags(gf.EndOfFlags)
	}
	if gf.FlagsAnywhere != nil {
		m.SetFlagsAnywhere(*gf.FlagsAnywhere)
	}
	if gf.NoFiles {
		m.NoFiles()
	}

	for _, f := range gf.Flags {
		m.AddFlag(f.Flag, f.Desc)
		if f.Hidden {
			m.HideFlags(f.Flag)
		}
	}

	for i, slot := range gf.Args {
		values := make([]interface{}, 0, len(slot.Values))
		for _, v := range slot.Values {
			text, err := renderValue(v.Value)
			if err != nil {
				return nil, fmt.Errorf("arg slot %d: %w", i+1, err)
			}
			if text == "" {
				continue
			}
			values = append(values, match.Candidate{
				Text:        text,
				Description: v.Desc,
				Type:        valueType(v.Type),
			})
		}
		m.AddArg(values...)
	}

	if gf.Loop > 0 {
		if gf.Loop > len(gf.Args) {
			return nil, fmt.Errorf("loop target %d exceeds the %d defined slots", gf.Loop, len(gf.Args))
		}
		m.Loop(gf.Loop)
	}
	if gf.Chain {
		m.Chain()
	}
	return m, nil
}

func valueType(code string) match.Type {
	if code == "" {
		return match.Arg
	}
	return match.ParseType(code)
}

func renderValue(value string) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}
	tmpl, err := template.New("value").Funcs(sprig.FuncMap()).Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid template %q: %w", value, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return "", fmt.Errorf("failed to render %q: %w", value, err)
	}
	return buf.String(), nil
}
