package compiler

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set"

	"gotac/pkg/tac"
)

// LabelError reports jump targets that are never defined and labels that
// are defined more than once.
type LabelError struct {
	Missing    []string
	Duplicates []string
}

func (e *LabelError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "undefined labels: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Duplicates) > 0 {
		parts = append(parts, "duplicate labels: "+strings.Join(e.Duplicates, ", "))
	}
	return "invalid TAC: " + strings.Join(parts, "; ")
}

// Verify checks that every goto/ifFalse target is defined by exactly one
// label instruction.
func Verify(p *tac.Program) error {
	defined := mapset.NewThreadUnsafeSet()
	duplicates := mapset.NewThreadUnsafeSet()
	targets := mapset.NewThreadUnsafeSet()

	for _, q := range p.Quads {
		switch {
		case q.Op == tac.OpLabel:
			if !defined.Add(q.Result) {
				duplicates.Add(q.Result)
			}
		case q.IsJump():
			targets.Add(q.Result)
		}
	}

	missing := targets.Difference(defined)
	if missing.Cardinality() == 0 && duplicates.Cardinality() == 0 {
		return nil
	}
	return &LabelError{Missing: sortedStrings(missing), Duplicates: sortedStrings(duplicates)}
}

func sortedStrings(s mapset.Set) []string {
	out := make([]string, 0, s.Cardinality())
	for _, v := range s.ToSlice() {
		out = append(out, fmt.Sprint(v))
	}
	sort.Strings(out)
	return out
}
