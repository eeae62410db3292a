package main

import "strings"

type commandKind int

const (
	cmdEmpty commandKind = iota
	cmdText
	cmdImage
	cmdLogout
	cmdQuit
)

type command struct {
	kind commandKind
	arg  string
}

// parseLine maps one line typed by the user to an action.
// Unknown slash commands are sent as text.
func parseLine(line string) command {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return command{kind: cmdEmpty}
	case trimmed == "/quit":
		return command{kind: cmdQuit}
	case trimmed == "/logout":
		return command{kind: cmdLogout}
	case strings.HasPrefix(trimmed, "/image "):
		return command{kind: cmdImage, arg: strings.TrimSpace(strings.TrimPrefix(trimmed, "/image "))}
	}
	return command{kind: cmdText, arg: line}
}
