package context

// Mode is the scope-exit policy applied to a loop's frame entries.
type Mode int

const (
	ModeVerbose Mode = iota
	ModeForget
	ModeCompress
)

// ApplyVerbose appends a ScopeExitEntry; every entry produced by the loop
// remains.
func ApplyVerbose(entries []Entry, loopKind, label string) []Entry {
	return append(entries, ScopeExitEntry{LoopKind: loopKind, Label: label})
}

// ApplyForget truncates entries back to enterIndex, discarding everything
// the loop produced, including the ScopeEnterEntry itself.
func ApplyForget(entries []Entry, enterIndex int) []Entry {
	if enterIndex < 0 || enterIndex > len(entries) {
		enterIndex = len(entries)
	}
	return entries[:enterIndex]
}

// ApplyCompress replaces entries[enterIndex:] with exactly three entries:
// the original scope_enter, a summary, and a scope_exit (the compress
// round-trip property in §8).
func ApplyCompress(entries []Entry, enterIndex int, loopKind, label, summary string) []Entry {
	if enterIndex < 0 || enterIndex >= len(entries) {
		// Degenerate: no scope_enter was recorded (e.g. zero-iteration loop
		// that nonetheless reached compress). Synthesize one.
		base := entries
		base = append(base, ScopeEnterEntry{LoopKind: loopKind, Label: label})
		base = append(base, SummaryEntry{Text: summary})
		base = append(base, ScopeExitEntry{LoopKind: loopKind, Label: label})
		return base
	}
	enter := entries[enterIndex]
	out := append([]Entry{}, entries[:enterIndex]...)
	out = append(out, enter, SummaryEntry{Text: summary}, ScopeExitEntry{LoopKind: loopKind, Label: label})
	return out
}

// EntriesSinceEnter returns the slice of entries produced since enterIndex
// (exclusive of the ScopeEnterEntry itself), the payload an embedder
// receives to summarize for `compress`.
func EntriesSinceEnter(entries []Entry, enterIndex int) []Entry {
	if enterIndex < 0 || enterIndex+1 > len(entries) {
		return nil
	}
	return entries[enterIndex+1:]
}
