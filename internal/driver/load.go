package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"zkc/internal/ast"
	"zkc/internal/project"
)

var (
	// ErrUnknownTreeFormat is returned for files that are neither JSON nor msgpack.
	ErrUnknownTreeFormat = errors.New("unknown tree format")
	// ErrDecodeTree wraps codec failures so callers can tell them from I/O errors.
	ErrDecodeTree = errors.New("cannot decode tree")
	// ErrProgramMismatch is returned when a tree does not declare the program
	// its manifest names.
	ErrProgramMismatch = errors.New("program name mismatch")
)

// TreeFormat derives the codec from the file extension.
func TreeFormat(path string) (project.OutputFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return project.FormatJSON, nil
	case ".msgpack", ".mp":
		return project.FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnknownTreeFormat)
	}
}

// IsTreeFile reports whether path has an extension LoadTree understands.
func IsTreeFile(path string) bool {
	_, err := TreeFormat(path)
	return err == nil
}

// LoadTree reads a type-checked tree from path.
func LoadTree(path string) (*ast.Program, error) {
	format, err := TreeFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTree(data, format, path)
}

// DecodeTree decodes an in-memory tree; path is only used in errors.
func DecodeTree(data []byte, format project.OutputFormat, path string) (*ast.Program, error) {
	var (
		prog *ast.Program
		err  error
	)
	switch format {
	case project.FormatJSON:
		prog, err = ast.ReadJSON(bytes.NewReader(data))
	case project.FormatMsgpack:
		prog, err = ast.ReadMsgpack(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownTreeFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrDecodeTree, err)
	}
	return prog, nil
}

// LoadProject loads the manifest's program and attaches every import the
// tree does not embed already, in manifest order.
func LoadProject(m *project.Manifest) (*ast.Program, error) {
	if m == nil {
		return nil, errors.New("missing project manifest")
	}
	prog, err := LoadTree(m.Tree)
	if err != nil {
		return nil, err
	}
	if m.Name != "" && prog.Name() != m.Name {
		return nil, fmt.Errorf("%s: %w: tree declares %q, manifest names %q", m.Tree, ErrProgramMismatch, prog.Name(), m.Name)
	}
	for _, imp := range m.Imports {
		if _, ok := prog.Imports.Get(imp.Name); ok {
			continue
		}
		dep, err := LoadTree(imp.Tree)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", imp.Name, err)
		}
		if dep.Name() != imp.Name {
			return nil, fmt.Errorf("import %s: %s: %w: tree declares %q", imp.Name, imp.Tree, ErrProgramMismatch, dep.Name())
		}
		prog.Imports.Set(imp.Name, dep)
	}
	return prog, nil
}

// WriteTree encodes prog in the given format.
func WriteTree(w io.Writer, prog *ast.Program, format project.OutputFormat) error {
	switch format {
	case project.FormatJSON:
		return ast.WriteJSON(w, prog)
	case project.FormatMsgpack:
		return ast.WriteMsgpack(w, prog)
	case project.FormatText:
		return ast.Dump(w, prog)
	default:
		return fmt.Errorf("%w %q", project.ErrUnknownOutputFormat, format)
	}
}

// WriteTreeFile writes prog to path atomically.
func WriteTreeFile(path string, prog *ast.Program, format project.OutputFormat) error {
	var buf bytes.Buffer
	if err := WriteTree(&buf, prog, format); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

// DefaultOutPath places the converted tree next to its input:
// build/token.json becomes build/token.ssa.json.
func DefaultOutPath(input string, format project.OutputFormat) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".ssa" + format.Ext()
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), path)
}
