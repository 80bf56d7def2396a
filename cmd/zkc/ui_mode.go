package main

import (
	"errors"
	"fmt"
	"strings"
)

// uiMode is the value of zkc ssa --ui.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var errUIWithStdout = errors.New("zkc ssa: --ui on cannot be combined with --out -")

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.TrimSpace(strings.ToLower(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	default:
		return "", fmt.Errorf("zkc ssa: invalid --ui value %q (expected auto|on|off)", value)
	}
}

// progressUI reports whether zkc ssa draws the progress view. The view owns
// stdout, so a tree written there (--out -) rules it out; --quiet wins over
// --ui on; auto follows whether stdout is a terminal.
func (m uiMode) progressUI(quiet, treeOnStdout, tty bool) (bool, error) {
	switch {
	case treeOnStdout && m == uiModeOn:
		return false, errUIWithStdout
	case treeOnStdout, quiet, m == uiModeOff:
		return false, nil
	case m == uiModeOn:
		return true, nil
	default:
		return tty, nil
	}
}
