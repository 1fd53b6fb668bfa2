package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the trustroute banner with the running version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	// Gradient from teal (trusted) to red (gated)
	s1 := out.String(" _              _                   _       ").Foreground(p.Color("#2dd4bf"))
	s2 := out.String("| |_ _ _ _  _ __| |_ _ _ ___ _  _| |_ ___ ").Foreground(p.Color("#38bdf8"))
	s3 := out.String("|  _| '_| || (_-<  _| '_/ _ \\ || |  _/ -_)").Foreground(p.Color("#a78bfa"))
	s4 := out.String(" \\__|_|  \\_,_/__/\\__|_| \\___/\\_,_|\\__\\___|").Foreground(p.Color("#fb7185"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, s1)
	fmt.Fprintln(w, s2)
	fmt.Fprintln(w, s3)
	fmt.Fprintln(w, s4)
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
