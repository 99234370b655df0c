package los

// Ledger accumulates modifiers for one evaluation in the order they are found.
type Ledger struct {
	entries    []Modifier
	impossible bool
	reason     string
	trace      *Trace
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add appends a modifier.
func (l *Ledger) Add(value int, reason string) {
	l.entries = append(l.entries, Modifier{Value: value, Reason: reason})
	l.trace.Add(-1, "--", TraceLedger, "add", reason, float64(value))
}

// ForceImpossible marks the shot impossible. The first reason given is kept;
// entries added afterwards are still recorded.
func (l *Ledger) ForceImpossible(reason string) {
	if l.impossible {
		l.trace.Add(-1, "--", TraceLedger, "impossible_ignored", reason, 0)
		return
	}
	l.impossible = true
	l.reason = reason
	l.trace.Add(-1, "--", TraceLedger, "impossible", reason, 0)
}

// Total is the sum of all entries so far.
func (l *Ledger) Total() int {
	sum := 0
	for _, m := range l.entries {
		sum += m.Value
	}
	return sum
}

// Finalize produces the result. The ledger keeps no reference to the returned
// entries.
func (l *Ledger) Finalize() Result {
	entries := make([]Modifier, len(l.entries))
	copy(entries, l.entries)
	if l.impossible {
		return Impossible{Reason: l.reason, Entries: entries}
	}
	total := l.Total()
	l.trace.Add(-1, "--", TraceLedger, "total", "", float64(total))
	return Computed{Total: total, Entries: entries}
}
