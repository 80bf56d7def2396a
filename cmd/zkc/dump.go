package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zkc/internal/diag"
	"zkc/internal/diagfmt"
	"zkc/internal/driver"
	"zkc/internal/project"
	"zkc/internal/ssa"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <tree>",
	Short: "Print a program tree, optionally after SSA conversion",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Bool("ssa", false, "convert the tree before printing")
	dumpCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	dumpCmd.Flags().Int("max-unroll", 0, "max iterations of one unrolled loop (0=default)")
}

func runDump(cmd *cobra.Command, args []string) error {
	convert, err := cmd.Flags().GetBool("ssa")
	if err != nil {
		return err
	}
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := project.ParseOutputFormat(formatStr)
	if err != nil {
		return err
	}
	maxUnroll, err := cmd.Flags().GetInt("max-unroll")
	if err != nil {
		return err
	}

	prog, err := driver.LoadTree(args[0])
	if err != nil {
		return err
	}
	if convert {
		bag := diag.NewBag(driver.DefaultMaxDiagnostics)
		out, err := ssa.Run(cmd.Context(), prog, ssa.Options{
			MaxUnroll: maxUnroll,
			Reporter:  diag.BagReporter{Bag: bag},
		})
		if err != nil {
			colored, cerr := useColor(cmd, os.Stderr)
			if cerr != nil {
				return cerr
			}
			units := []diagfmt.UnitDiagnostics{{Unit: args[0], Bag: bag}}
			if perr := diagfmt.Pretty(cmd.ErrOrStderr(), units, diagfmt.PrettyOpts{Color: colored}); perr != nil {
				return perr
			}
			return fmt.Errorf("%s: conversion failed", args[0])
		}
		prog = out
	}
	return driver.WriteTree(cmd.OutOrStdout(), prog, format)
}
