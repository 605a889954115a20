package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ── Startup display helpers ────────────────────────────────────────

type console struct {
	w io.Writer
}

func (c console) banner(name, gameVersion string) {
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, "\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Fprintf(c.w, "\033[36;1m  │\033[0m %-41s \033[36;1m│\033[0m\n", "vida "+version)
	fmt.Fprintln(c.w, "\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Fprintln(c.w)
	fmt.Fprintf(c.w, "  \033[1mgame:\033[0m %s \033[90m(%s)\033[0m\n\n", name, gameVersion)
}

func (c console) section(title string) {
	lineLen := max(46-utf8.RuneCountInString(title)-1, 3)
	fmt.Fprintf(c.w, "  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func (c console) stat(label string, count int) {
	num := fmt.Sprintf("%d", count)
	dots := max(42-utf8.RuneCountInString(label)-len(num), 3)
	fmt.Fprintf(c.w, "  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dots), num)
}

func (c console) ok(msg string) {
	fmt.Fprintf(c.w, "  \033[32m✓\033[0m %s\n", msg)
}

func (c console) warn(msg string) {
	fmt.Fprintf(c.w, "  \033[33m!\033[0m %s\n", msg)
}

func (c console) ready(msg string) {
	fmt.Fprintf(c.w, "  \033[32m▶\033[0m %s\n", msg)
}
