package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"zkc/internal/project"
)

// Input is one compilation unit found on the command line: either a bare
// tree file or a project manifest.
type Input struct {
	Path     string
	Manifest *project.Manifest
}

// ErrNoInputs is returned when no argument was given and no zkc.toml exists.
var ErrNoInputs = errors.New("no inputs and no " + project.ManifestName + " found")

// ResolveInputs expands command-line arguments into units. A directory with
// zkc.toml is a project; any other directory contributes every tree file
// below it except earlier outputs (*.ssa.*). Without arguments the nearest
// zkc.toml above the working directory is used.
func ResolveInputs(args []string) ([]Input, error) {
	if len(args) == 0 {
		path, ok, err := project.FindManifest(".")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoInputs
		}
		return manifestInput(path)
	}

	var inputs []Input
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		switch {
		case !info.IsDir() && filepath.Base(arg) == project.ManifestName:
			in, err := manifestInput(arg)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in...)
		case !info.IsDir():
			if !IsTreeFile(arg) {
				return nil, fmt.Errorf("%s: %w", arg, ErrUnknownTreeFormat)
			}
			inputs = append(inputs, Input{Path: arg})
		default:
			manifest := filepath.Join(arg, project.ManifestName)
			if _, err := os.Stat(manifest); err == nil {
				in, err := manifestInput(manifest)
				if err != nil {
					return nil, err
				}
				inputs = append(inputs, in...)
				continue
			}
			files, err := listTreeFiles(arg)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				inputs = append(inputs, Input{Path: f})
			}
		}
	}
	return inputs, nil
}

func manifestInput(path string) ([]Input, error) {
	m, err := project.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return []Input{{Path: m.Tree, Manifest: m}}, nil
}

// listTreeFiles возвращает отсортированный список деревьев в директории
func listTreeFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsTreeFile(path) || isOutputFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func isOutputFile(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, ".ssa.")
}
