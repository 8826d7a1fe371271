// Package prompttest answers prompts from a script in tests.
package prompttest

import (
	"fmt"
	"slices"
	"testing"

	"github.com/llehouerou/crate/internal/prompt"
)

// Script replays answers in order. Choose takes an int index or a string
// label, ChooseMany an []int or []string, Confirm a bool and Input a string
// where "" keeps the current value. An error answer is returned as is.
type Script struct {
	t       testing.TB
	answers []any
	// Asked records the title of every prompt shown.
	Asked []string
}

var _ prompt.UI = (*Script)(nil)

// New returns a Script that fails the test if answers are left over.
func New(t testing.TB, answers ...any) *Script {
	t.Helper()
	s := &Script{t: t, answers: answers}
	t.Cleanup(func() {
		if len(s.answers) > 0 && !t.Failed() {
			t.Errorf("%d scripted answer(s) not used: %v", len(s.answers), s.answers)
		}
	})
	return s
}

func (s *Script) next(title string) (any, error) {
	s.t.Helper()
	s.Asked = append(s.Asked, title)
	if len(s.answers) == 0 {
		s.t.Fatalf("unexpected prompt %q", title)
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	if err, ok := a.(error); ok {
		return nil, err
	}
	return a, nil
}

func (s *Script) index(title string, labels []string, a any) int {
	s.t.Helper()
	switch v := a.(type) {
	case int:
		if v < 0 || v >= len(labels) {
			s.t.Fatalf("%q: index %d out of range %v", title, v, labels)
		}
		return v
	case string:
		i := slices.Index(labels, v)
		if i < 0 {
			s.t.Fatalf("%q: no label %q in %v", title, v, labels)
		}
		return i
	default:
		s.t.Fatalf("%q: cannot choose with %T", title, a)
		return 0
	}
}

// Choose implements prompt.UI.
func (s *Script) Choose(title string, labels []string) (int, error) {
	s.t.Helper()
	a, err := s.next(title)
	if err != nil {
		return 0, err
	}
	return s.index(title, labels, a), nil
}

// ChooseMany implements prompt.UI.
func (s *Script) ChooseMany(title string, labels []string) ([]int, error) {
	s.t.Helper()
	a, err := s.next(title)
	if err != nil {
		return nil, err
	}
	var out []int
	switch v := a.(type) {
	case []int:
		for _, i := range v {
			out = append(out, s.index(title, labels, i))
		}
	case []string:
		for _, l := range v {
			out = append(out, s.index(title, labels, l))
		}
	default:
		s.t.Fatalf("%q: cannot choose many with %T", title, a)
	}
	return out, nil
}

// Confirm implements prompt.UI.
func (s *Script) Confirm(question string) (bool, error) {
	s.t.Helper()
	a, err := s.next(question)
	if err != nil {
		return false, err
	}
	b, ok := a.(bool)
	if !ok {
		s.t.Fatalf("%q: want bool answer, got %T", question, a)
	}
	return b, nil
}

// Input implements prompt.UI.
func (s *Script) Input(label, value string) (string, error) {
	s.t.Helper()
	a, err := s.next(label)
	if err != nil {
		return "", err
	}
	v, ok := a.(string)
	if !ok {
		s.t.Fatalf("%q: want string answer, got %T", label, a)
	}
	if v == "" {
		return value, nil
	}
	return v, nil
}

// String lists the remaining answers.
func (s *Script) String() string {
	return fmt.Sprint(s.answers)
}
