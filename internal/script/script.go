// Package script renders selections as a shell script of dated git commits.
package script

import (
	"fmt"
	"io"
	"strings"

	"github.com/klabast/wb-services/time-travel/internal/selection"
)

// ReadmeFile is the file every fake commit appends a line to
const ReadmeFile = "README.md"

// Generate returns the script for the selections, in input order.
//
// A selection with count n yields n+1 commits, numbered 0 through n.
func Generate(selections []selection.Selection) string {
	var b strings.Builder
	_ = write(&b, selections)
	return b.String()
}

// WriteTo streams the script for the selections to w
func WriteTo(w io.Writer, selections []selection.Selection) error {
	return write(w, selections)
}

// Header is the preamble of a standalone script file
func Header() string {
	return "#!/bin/sh\nset -e\n"
}

// Message is the commit message of the i-th commit for sel
func Message(sel selection.Selection, i int) string {
	return fmt.Sprintf("commit %d of %s with count %d", i, sel.Date, sel.Count)
}

// ReadmeLine is the line the i-th commit for sel appends to the README
func ReadmeLine(sel selection.Selection, i int) string {
	return fmt.Sprintf("- Added fake commit %s with %d commits", Message(sel, i), sel.Count)
}

// Commits is the number of commits generated for sel
func Commits(sel selection.Selection) int {
	return max(0, sel.Count+1)
}

func write(w io.Writer, selections []selection.Selection) error {
	for _, sel := range selections {
		for i := range Commits(sel) {
			_, err := fmt.Fprintf(w, "\necho \"%s\" >> %s\ngit add .\ngit commit --date %s -m \"%s\"\n",
				ReadmeLine(sel, i), ReadmeFile, sel.Date, Message(sel, i))
			if err != nil {
				return err
			}
		}
	}
	return nil
}
