// Package testkit holds invariant checkers shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"remedy/internal/convert"
	"remedy/internal/oracle"
	"remedy/internal/source"
	"remedy/internal/types"
)

// CheckSequenceInvariants verifies the deref chain reported for id:
// 1) the chain is non-empty and starts at id itself
// 2) the chain never exceeds the search depth cap
// 3) no type repeats (a repeat would mean a deref cycle)
func CheckSequenceInvariants(orc oracle.Oracle, id types.TypeID) error {
	seq := orc.CoercionSequence(id)
	if len(seq) == 0 {
		return fmt.Errorf("empty coercion sequence for type %d", id)
	}
	if seq[0] != id {
		return fmt.Errorf("coercion sequence head is %d, want %d", seq[0], id)
	}
	if len(seq) > oracle.MaxDerefDepth {
		return fmt.Errorf("coercion sequence length %d exceeds cap %d", len(seq), oracle.MaxDerefDepth)
	}
	seen := make(map[types.TypeID]struct{}, len(seq))
	for _, t := range seq {
		if _, dup := seen[t]; dup {
			return fmt.Errorf("coercion sequence revisits type %d", t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

// CheckCandidateInvariants verifies the fixed-priority rules on a
// candidate list:
// 1) an as-cast candidate is always the only candidate
// 2) from and try-from never coexist for the same mismatch
func CheckCandidateInvariants(cands []convert.Candidate) error {
	var hasFrom, hasTryFrom bool
	for _, c := range cands {
		switch c.Kind {
		case convert.KindAsCast:
			if len(cands) != 1 {
				return fmt.Errorf("as-cast must be the sole candidate, got %d candidates", len(cands))
			}
		case convert.KindFrom:
			hasFrom = true
		case convert.KindTryFrom:
			hasTryFrom = true
		}
	}
	if hasFrom && hasTryFrom {
		return fmt.Errorf("from and try-from candidates coexist")
	}
	return nil
}

// CheckSpanInBounds verifies that a span points into sf and lies within
// its content.
func CheckSpanInBounds(sf *source.File, sp source.Span) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	if sp.File != sf.ID {
		return fmt.Errorf("span points to file id %d, want %d", sp.File, sf.ID)
	}
	if sp.End < sp.Start {
		return fmt.Errorf("span end precedes start: %v", sp)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return nil
}
