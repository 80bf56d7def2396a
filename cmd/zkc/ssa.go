package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zkc/internal/diag"
	"zkc/internal/diagfmt"
	"zkc/internal/driver"
	"zkc/internal/project"
)

var ssaCmd = &cobra.Command{
	Use:   "ssa [flags] [tree|directory|zkc.toml]...",
	Short: "Convert program trees into SSA form",
	Long: `Convert type-checked program trees (.json, .msgpack, .mp) into SSA form.
Directories are searched for trees; a directory holding zkc.toml is built as a project.
Without arguments the nearest zkc.toml is used.`,
	RunE: runSSA,
}

func init() {
	ssaCmd.Flags().StringP("out", "o", "", "output file, directory for several inputs, or - for stdout")
	ssaCmd.Flags().String("format", "", "output format (json|msgpack|text); default from zkc.toml or json")
	ssaCmd.Flags().Int("jobs", 0, "max parallel units (0=auto)")
	ssaCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	ssaCmd.Flags().Bool("no-cache", false, "disable the on-disk result cache")
	ssaCmd.Flags().Int("max-unroll", 0, "max iterations of one unrolled loop (0=default)")
	ssaCmd.Flags().Bool("no-validate", false, "skip re-checking the output")
	ssaCmd.Flags().String("diagnostics", "pretty", "diagnostics format (pretty|json|short)")
	ssaCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
}

type ssaFlags struct {
	out         string
	format      project.OutputFormat
	formatSet   bool
	jobs        int
	ui          uiMode
	noCache     bool
	maxUnroll   int
	unrollSet   bool
	noValidate  bool
	diagFormat  string
	withNotes   bool
	quiet       bool
	timings     bool
	maxDiag     int
	colorStderr bool
}

func readSSAFlags(cmd *cobra.Command) (*ssaFlags, error) {
	f := &ssaFlags{}
	var err error
	flags := cmd.Flags()
	if f.out, err = flags.GetString("out"); err != nil {
		return nil, err
	}
	formatStr, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	if f.format, err = project.ParseOutputFormat(formatStr); err != nil {
		return nil, err
	}
	f.formatSet = flags.Changed("format")
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, err
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return nil, err
	}
	if f.ui, err = readUIMode(uiStr); err != nil {
		return nil, err
	}
	if f.noCache, err = flags.GetBool("no-cache"); err != nil {
		return nil, err
	}
	if f.maxUnroll, err = flags.GetInt("max-unroll"); err != nil {
		return nil, err
	}
	if f.maxUnroll < 0 {
		return nil, fmt.Errorf("--max-unroll must not be negative, got %d", f.maxUnroll)
	}
	f.unrollSet = flags.Changed("max-unroll")
	if f.noValidate, err = flags.GetBool("no-validate"); err != nil {
		return nil, err
	}
	if f.diagFormat, err = flags.GetString("diagnostics"); err != nil {
		return nil, err
	}
	switch f.diagFormat {
	case "pretty", "json", "short":
	default:
		return nil, fmt.Errorf("unsupported diagnostics format %q (must be pretty, json or short)", f.diagFormat)
	}
	if f.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return nil, err
	}

	root := cmd.Root().PersistentFlags()
	if f.quiet, err = root.GetBool("quiet"); err != nil {
		return nil, err
	}
	if f.timings, err = root.GetBool("timings"); err != nil {
		return nil, err
	}
	if f.maxDiag, err = root.GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	if f.colorStderr, err = useColor(cmd, os.Stderr); err != nil {
		return nil, err
	}
	return f, nil
}

func runSSA(cmd *cobra.Command, args []string) error {
	flags, err := readSSAFlags(cmd)
	if err != nil {
		return err
	}
	inputs, err := driver.ResolveInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no program trees found")
	}
	if flags.out == "-" && len(inputs) > 1 {
		return fmt.Errorf("--out - needs exactly one input, got %d", len(inputs))
	}
	useUI, err := flags.ui.progressUI(flags.quiet, flags.out == "-", isTerminal(os.Stdout))
	if err != nil {
		return err
	}

	var cache *driver.DiskCache
	if !flags.noCache {
		if cache, err = driver.OpenDiskCache("zkc"); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", err)
			cache = nil
		}
	}

	reqs := make([]*driver.CompileRequest, 0, len(inputs))
	for _, in := range inputs {
		req, err := buildRequest(in, flags, len(inputs))
		if err != nil {
			return err
		}
		req.Cache = cache
		req.Stdout = cmd.OutOrStdout()
		reqs = append(reqs, req)
	}

	var results []*driver.CompileResult
	if useUI {
		results, err = runCompileWithUI(cmd.Context(), "zkc ssa", reqs, flags.jobs)
	} else {
		results, err = driver.CompileAll(cmd.Context(), reqs, flags.jobs)
	}
	if err != nil {
		return err
	}
	return reportResults(cmd.ErrOrStderr(), results, flags)
}

func buildRequest(in driver.Input, flags *ssaFlags, total int) (*driver.CompileRequest, error) {
	req := &driver.CompileRequest{
		Path:           in.Path,
		Manifest:       in.Manifest,
		MaxUnroll:      flags.maxUnroll,
		Validate:       !flags.noValidate,
		Format:         flags.format,
		MaxDiagnostics: flags.maxDiag,
		Timings:        flags.timings,
	}
	defaultOut := ""
	if m := in.Manifest; m != nil {
		if !flags.unrollSet {
			req.MaxUnroll = m.SSA.MaxUnroll
		}
		req.Validate = req.Validate && m.SSA.Validate
		if !flags.formatSet {
			req.Format = m.Output.Format
		}
		defaultOut = m.Output.Path
	}
	if defaultOut == "" {
		defaultOut = driver.DefaultOutPath(in.Path, req.Format)
	}

	switch {
	case flags.out == "":
		req.Out = defaultOut
	case flags.out == "-" || total == 1 && !isDir(flags.out):
		req.Out = flags.out
	default:
		req.Out = filepath.Join(flags.out, filepath.Base(defaultOut))
	}
	return req, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func reportResults(w io.Writer, results []*driver.CompileResult, flags *ssaFlags) error {
	units := make([]diagfmt.UnitDiagnostics, 0, len(results))
	failed := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Failed() {
			failed++
		}
		units = append(units, diagfmt.UnitDiagnostics{Unit: res.Unit, Bag: res.Bag})
	}

	var err error
	switch flags.diagFormat {
	case "json":
		err = diagfmt.JSON(w, units, diagfmt.JSONOpts{IncludeNotes: flags.withNotes})
	case "short":
		for _, u := range units {
			if short := diag.FormatShort(u.Bag.Items(), flags.withNotes); short != "" {
				if _, err = fmt.Fprintf(w, "%s\n", prefixLines(u.Unit+": ", short)); err != nil {
					break
				}
			}
		}
	default:
		err = diagfmt.Pretty(w, units, diagfmt.PrettyOpts{Color: flags.colorStderr, ShowNotes: flags.withNotes})
	}
	if err != nil {
		return err
	}

	if !flags.quiet && flags.diagFormat == "pretty" {
		ok := color.New(color.FgGreen)
		if flags.colorStderr {
			ok.EnableColor()
		} else {
			ok.DisableColor()
		}
		for _, res := range results {
			if res == nil || res.Failed() || res.OutPath == "" {
				continue
			}
			note := ""
			if res.Cached {
				note = " (cached)"
			}
			fmt.Fprintf(w, "%s %s -> %s%s\n", ok.Sprint("converted"), res.Unit, res.OutPath, note)
		}
		if failed > 0 {
			fmt.Fprintln(w, diagfmt.Summary(units))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(results))
	}
	return nil
}

func prefixLines(prefix, text string) string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
