package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer decides whether a mutating stage may proceed.
type Confirmer interface {
	Confirm(prompt string) bool
}

// AutoConfirmer approves every stage.
type AutoConfirmer struct{}

// Confirm always returns true.
func (AutoConfirmer) Confirm(string) bool { return true }

// DeclineConfirmer rejects every stage. It is used when no terminal is attached and
// auto-confirm was not requested.
type DeclineConfirmer struct{}

// Confirm always returns false.
func (DeclineConfirmer) Confirm(string) bool { return false }

// PromptConfirmer asks a y/n question on out and reads the answer from in.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer creates a PromptConfirmer.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm accepts "y" or "yes" in any case. Read errors count as no.
func (p *PromptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s (y/n): ", prompt)
	response, err := p.in.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
