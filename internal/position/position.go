// Package position implements the disc/track index value used by tags and the catalog.
package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFormat is wrapped by every FormatError.
var ErrFormat = errors.New("invalid position")

// FormatError reports text that is not "N" or "N/M".
type FormatError struct {
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid position %q", e.Text)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// Position is an index with an optional total, e.g. disc 2 of 3.
type Position struct {
	Index    int
	total    int
	hasTotal bool
}

// New returns a position without a total.
func New(index int) Position {
	return Position{Index: index}
}

// WithTotal returns a position with a total.
func WithTotal(index, total int) Position {
	return Position{Index: index, total: total, hasTotal: true}
}

// Total returns the total and whether one is set.
func (p Position) Total() (int, bool) {
	return p.total, p.hasTotal
}

// Equal reports whether both index and total match.
func (p Position) Equal(o Position) bool {
	return p == o
}

// String renders "N" or "N/M".
func (p Position) String() string {
	if !p.hasTotal {
		return strconv.Itoa(p.Index)
	}
	return strconv.Itoa(p.Index) + "/" + strconv.Itoa(p.total)
}

// Parse reads "N" or "N/M". Both parts must be non-negative decimal integers.
func Parse(text string) (Position, error) {
	indexText, totalText, hasTotal := strings.Cut(text, "/")
	index, ok := parsePart(indexText)
	if !ok {
		return Position{}, &FormatError{Text: text}
	}
	if !hasTotal {
		return New(index), nil
	}
	total, ok := parsePart(totalText)
	if !ok {
		return Position{}, &FormatError{Text: text}
	}
	return WithTotal(index, total), nil
}

func parsePart(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
