package main

import (
	"io"
	"os"
	"strings"
)

// triState is the value of --color and --ui.
type triState string

const (
	stateAuto triState = "auto"
	stateOn   triState = "on"
	stateOff  triState = "off"
)

func readTriState(flag, value string) (triState, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return stateAuto, nil
	case "on":
		return stateOn, nil
	case "off":
		return stateOff, nil
	default:
		return "", usagef("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

// enabledFor resolves auto against w: on only for an interactive terminal.
func (s triState) enabledFor(w io.Writer) bool {
	switch s {
	case stateOn:
		return true
	case stateOff:
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
