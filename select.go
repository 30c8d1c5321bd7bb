package pyjamaz

// selectWinner picks the best candidate across every format's trace.
// Preference order:
//  1. Candidates that pass both constraints beat those that don't.
//  2. Among passing candidates, smallest Bytes wins.
//  3. Ties broken by lower Diff (higher fidelity).
//  4. Remaining ties broken by the format's position in the caller's
//     requested format order (constraints.Formats, or AllFormats when
//     the caller didn't restrict it) for determinism.
//
// If no candidate passes, the best-effort closest candidate (by the same
// ordering, ignoring the pass/fail split) is returned with passed=false.
// Traces in StateErrored contribute no candidates.
func selectWinner(traces map[Format]*FormatTrace, constraints Constraints) (winner *Candidate, passed bool) {
	order := constraints.formats()
	var passing []Candidate
	var all []Candidate

	for _, f := range order {
		trace, ok := traces[f]
		if !ok || trace == nil || trace.State == StateErrored {
			continue
		}
		for _, c := range trace.Candidates {
			all = append(all, c)
			if c.fitsSize(constraints.MaxBytes) && c.fitsDiff(constraints.MaxDiff) {
				passing = append(passing, c)
			}
		}
	}

	if len(passing) > 0 {
		best := betterCandidate(passing, order)
		return &best, true
	}
	if len(all) > 0 {
		best := betterCandidate(all, order)
		return &best, false
	}
	return nil, false
}

func betterCandidate(cands []Candidate, order []Format) Candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if isBetter(c, best, order) {
			best = c
		}
	}
	return best
}

func isBetter(a, b Candidate, order []Format) bool {
	if a.Bytes != b.Bytes {
		return a.Bytes < b.Bytes
	}
	if a.Diff != b.Diff {
		return a.Diff < b.Diff
	}
	return formatRank(a.Format, order) < formatRank(b.Format, order)
}

// formatRank returns a's index in order — the user-supplied candidate
// format list when the caller restricted it, AllFormats otherwise — so
// the final tie-break prefers whichever format the caller asked for
// first, not a fixed package-level order.
func formatRank(f Format, order []Format) int {
	for i, o := range order {
		if o == f {
			return i
		}
	}
	return len(order)
}
