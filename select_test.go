package pyjamaz

import "testing"

func TestSelectWinnerPrefersPassing(t *testing.T) {
	traces := map[Format]*FormatTrace{
		JPEG: {Format: JPEG, Candidates: []Candidate{{Format: JPEG, Bytes: 1000, Diff: 0.1}}},
		WebP: {Format: WebP, Candidates: []Candidate{{Format: WebP, Bytes: 5000, Diff: 0.001}}},
	}
	maxDiff := 0.01
	winner, passed := selectWinner(traces, Constraints{MaxDiff: &maxDiff})
	if !passed {
		t.Fatalf("expected a passing candidate")
	}
	if winner.Format != WebP {
		t.Errorf("want WebP (the only one meeting MaxDiff), got %s", winner.Format)
	}
}

func TestSelectWinnerSmallestBytesAmongPassing(t *testing.T) {
	traces := map[Format]*FormatTrace{
		JPEG: {Format: JPEG, Candidates: []Candidate{{Format: JPEG, Bytes: 1000, Diff: 0.001}}},
		WebP: {Format: WebP, Candidates: []Candidate{{Format: WebP, Bytes: 500, Diff: 0.001}}},
	}
	winner, passed := selectWinner(traces, Constraints{})
	if !passed {
		t.Fatalf("expected a passing candidate with no constraints")
	}
	if winner.Format != WebP || winner.Bytes != 500 {
		t.Errorf("want smallest candidate (WebP, 500 bytes), got %s %d", winner.Format, winner.Bytes)
	}
}

func TestSelectWinnerNoPassingReturnsBestEffort(t *testing.T) {
	traces := map[Format]*FormatTrace{
		JPEG: {Format: JPEG, Candidates: []Candidate{{Format: JPEG, Bytes: 1000, Diff: 0.5}}},
	}
	maxDiff := 0.01
	winner, passed := selectWinner(traces, Constraints{MaxDiff: &maxDiff})
	if passed {
		t.Fatalf("nothing should have passed")
	}
	if winner == nil || winner.Format != JPEG {
		t.Fatalf("expected a best-effort winner, got %+v", winner)
	}
}

func TestSelectWinnerTieBreaksOnUserFormatOrder(t *testing.T) {
	traces := map[Format]*FormatTrace{
		JPEG: {Format: JPEG, Candidates: []Candidate{{Format: JPEG, Bytes: 1000, Diff: 0.01}}},
		PNG:  {Format: PNG, Candidates: []Candidate{{Format: PNG, Bytes: 1000, Diff: 0.01}}},
	}
	winner, passed := selectWinner(traces, Constraints{Formats: []Format{PNG, JPEG}})
	if !passed {
		t.Fatalf("expected a passing candidate")
	}
	if winner.Format != PNG {
		t.Errorf("a byte/diff tie should resolve to the format listed first by the caller (PNG), got %s", winner.Format)
	}
}

func TestSelectWinnerEmptyTraces(t *testing.T) {
	winner, passed := selectWinner(map[Format]*FormatTrace{}, Constraints{})
	if winner != nil || passed {
		t.Errorf("empty traces should produce no winner")
	}
}
