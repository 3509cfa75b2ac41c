package main

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// useColor resolves the colour mode against the output stream.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return isTerminal(w) && os.Getenv("TERM") != "dumb"
}

// newTable returns a table writer styled for the configured colour mode.
func (e *env) newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(header)
	if useColor(e.cfg.Color, e.stdout) {
		t.SetStyle(table.StyleColoredBright)
	} else {
		t.SetStyle(table.StyleLight)
	}
	return t
}

// pagerCommand returns the pager to run, or "" when output goes straight
// to stdout.
func (e *env) pagerCommand() string {
	if e.cfg.Pager == PagerOff || !isTerminal(e.stdout) {
		return ""
	}
	if e.cfg.Pager != "" {
		return e.cfg.Pager
	}
	if p := strings.TrimSpace(os.Getenv("PAGER")); p != "" {
		return p
	}
	return "less -FRX"
}

// page writes text to stdout, through the pager when one applies. A pager
// that fails to start falls back to plain output.
func (e *env) page(text string) error {
	cmd := e.pagerCommand()
	if cmd == "" {
		_, err := io.WriteString(e.stdout, text)
		return err
	}
	p := exec.Command("sh", "-c", cmd)
	p.Stdin = bytes.NewBufferString(text)
	p.Stdout = e.stdout
	p.Stderr = e.stderr
	if err := p.Run(); err != nil {
		e.log.Warn("Pager failed, writing directly", "pager", cmd, "err", err)
		_, err := io.WriteString(e.stdout, text)
		return err
	}
	return nil
}
