// Package prompt asks the operator to confirm an action.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Line reads a one-line answer from in after writing the question to out.
// "y" and "yes" (any case) confirm; anything else, including EOF, declines.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a line-based confirmer.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

// Confirm implements Confirmer.
func (l *Line) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprintf(l.out, "%s (y/n): ", question); err != nil {
		return false, err
	}
	answer, err := l.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Always confirms without asking.
type Always struct{}

// Confirm implements Confirmer.
func (Always) Confirm(string) (bool, error) { return true, nil }
