package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// OutputFormat selects how converted trees are written.
type OutputFormat string

const (
	FormatJSON    OutputFormat = "json"
	FormatMsgpack OutputFormat = "msgpack"
	FormatText    OutputFormat = "text"
)

// ParseOutputFormat accepts json, msgpack (or mp) and text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w %q (want json, msgpack or text)", ErrUnknownOutputFormat, s)
	}
}

// Ext returns the file extension used for the format.
func (f OutputFormat) Ext() string {
	switch f {
	case FormatMsgpack:
		return ".msgpack"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

var (
	// ErrProgramSectionMissing indicates that [program] is missing in zkc.toml.
	ErrProgramSectionMissing = errors.New("missing [program]")
	// ErrProgramTreeMissing indicates that [program].tree is missing in zkc.toml.
	ErrProgramTreeMissing = errors.New("missing [program].tree")
	// ErrUnknownOutputFormat is returned for an unsupported [output].format.
	ErrUnknownOutputFormat = errors.New("unknown output format")
)

// Import is one [imports] entry: program id mapped to its tree file.
type Import struct {
	Name string
	Tree string // absolute path
}

// SSAConfig mirrors the [ssa] section.
type SSAConfig struct {
	MaxUnroll int  // 0 keeps the pass default
	Validate  bool // defaults to true
}

// OutputConfig mirrors the [output] section.
type OutputConfig struct {
	Path   string // absolute; empty means "next to the input"
	Format OutputFormat
}

// Manifest is a loaded and validated zkc.toml.
type Manifest struct {
	Path    string
	Root    string
	Name    string // program id, e.g. token.aleo
	Tree    string // absolute path to the program tree
	Imports []Import
	SSA     SSAConfig
	Output  OutputConfig
}

type manifestFile struct {
	Program struct {
		Name string `toml:"name"`
		Tree string `toml:"tree"`
	} `toml:"program"`
	Imports map[string]string `toml:"imports"`
	SSA     struct {
		MaxUnroll int  `toml:"max_unroll"`
		Validate  bool `toml:"validate"`
	} `toml:"ssa"`
	Output struct {
		Path   string `toml:"path"`
		Format string `toml:"format"`
	} `toml:"output"`
}

// LoadManifest parses and validates zkc.toml at path. Relative paths in the
// manifest are resolved against its directory.
func LoadManifest(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("program") {
		return nil, fmt.Errorf("%s: %w", path, ErrProgramSectionMissing)
	}
	treeRel := strings.TrimSpace(cfg.Program.Tree)
	if !meta.IsDefined("program", "tree") || treeRel == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrProgramTreeMissing)
	}
	root := filepath.Dir(path)
	m := &Manifest{
		Path: path,
		Root: root,
		Name: strings.TrimSpace(cfg.Program.Name),
		SSA:  SSAConfig{MaxUnroll: cfg.SSA.MaxUnroll, Validate: true},
	}
	if m.Name != "" && !IsValidProgramID(m.Name) {
		return nil, fmt.Errorf("%s: invalid [program].name %q", path, m.Name)
	}
	if m.Tree, err = ResolvePath(root, treeRel); err != nil {
		return nil, fmt.Errorf("%s: [program].tree: %w", path, err)
	}

	// meta.Keys keeps declaration order, so imports come out as written.
	for _, key := range meta.Keys() {
		if len(key) != 2 || key[0] != "imports" {
			continue
		}
		name := key[1]
		if !IsValidProgramID(name) {
			return nil, fmt.Errorf("%s: invalid import name %q", path, name)
		}
		if name == m.Name {
			return nil, fmt.Errorf("%s: program %q imports itself", path, name)
		}
		rel := strings.TrimSpace(cfg.Imports[name])
		if rel == "" {
			return nil, fmt.Errorf("%s: import %q has no tree path", path, name)
		}
		abs, err := ResolvePath(root, rel)
		if err != nil {
			return nil, fmt.Errorf("%s: import %q: %w", path, name, err)
		}
		m.Imports = append(m.Imports, Import{Name: name, Tree: abs})
	}

	if cfg.SSA.MaxUnroll < 0 {
		return nil, fmt.Errorf("%s: [ssa].max_unroll must not be negative, got %d", path, cfg.SSA.MaxUnroll)
	}
	if meta.IsDefined("ssa", "validate") {
		m.SSA.Validate = cfg.SSA.Validate
	}

	format, err := ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf("%s: [output].format: %w", path, err)
	}
	m.Output.Format = format
	if out := strings.TrimSpace(cfg.Output.Path); out != "" {
		if m.Output.Path, err = ResolvePath(root, out); err != nil {
			return nil, fmt.Errorf("%s: [output].path: %w", path, err)
		}
	}
	return m, nil
}

// ResolvePath resolves a manifest-relative path and rejects paths that
// escape the project root.
func ResolvePath(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", errors.New("empty path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q must be relative", rel)
	}
	full := filepath.Join(root, filepath.Clean(filepath.FromSlash(rel)))
	if !pathWithin(root, full) {
		return "", fmt.Errorf("path %q escapes project root", rel)
	}
	return full, nil
}

// IsValidProgramID reports whether s looks like name.network with ASCII
// identifier parts.
func IsValidProgramID(s string) bool {
	name, network, ok := strings.Cut(s, ".")
	return ok && isIdent(name) && isIdent(network)
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
