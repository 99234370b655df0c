package los

import (
	"fmt"
	"slices"
	"strings"
)

// Trace categories.
const (
	TraceLine    = "line"    // hexes visited by the sight line
	TraceProfile = "profile" // ray height against obstruction height
	TraceCover   = "cover"   // terrain and unit cover decisions
	TraceLedger  = "ledger"  // modifier bookkeeping
)

// TraceEntry is one recorded decision during an evaluation.
type TraceEntry struct {
	Step     int     // line step, -1 for whole-shot events
	Hex      string  // XXYY, or "--" for whole-shot events
	Category string  // line, profile, cover, ledger
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[S=03] 0104 profile  blocked          ray 1.40 < obstruction 3
func (e TraceEntry) String() string {
	step := "--"
	if e.Step >= 0 {
		step = fmt.Sprintf("%02d", e.Step)
	}
	return fmt.Sprintf("[S=%s] %-4s %-8s %-16s %s",
		step, e.Hex, e.Category, e.Key, e.Value)
}

// Trace collects structured events for one evaluation. A nil *Trace discards
// everything, so the engine records unconditionally.
type Trace struct {
	entries []TraceEntry
}

// NewTrace creates an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Add records a new entry.
func (tr *Trace) Add(step int, hex, category, key, value string, numVal float64) {
	if tr == nil {
		return
	}
	tr.entries = append(tr.entries, TraceEntry{
		Step:     step,
		Hex:      hex,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Entries returns all recorded entries.
func (tr *Trace) Entries() []TraceEntry {
	if tr == nil {
		return nil
	}
	return tr.entries
}

// Filter returns the entries with the given category and key. An empty argument
// matches anything.
func (tr *Trace) Filter(category, key string) []TraceEntry {
	return tr.where(func(e TraceEntry) bool { return e.is(category, key) })
}

// FilterHex returns the entries recorded against one hex.
func (tr *Trace) FilterHex(hex string) []TraceEntry {
	return tr.where(func(e TraceEntry) bool { return e.Hex == hex })
}

// HasEntry reports whether an entry with the given category and key has a
// detail containing substr.
func (tr *Trace) HasEntry(category, key, substr string) bool {
	return slices.ContainsFunc(tr.Entries(), func(e TraceEntry) bool {
		return e.is(category, key) && strings.Contains(e.Value, substr)
	})
}

// Format renders the trace one entry per line, in recording order.
func (tr *Trace) Format() string {
	var b strings.Builder
	for _, e := range tr.Entries() {
		fmt.Fprintln(&b, e)
	}
	return b.String()
}

func (e TraceEntry) is(category, key string) bool {
	return (category == "" || e.Category == category) && (key == "" || e.Key == key)
}

func (tr *Trace) where(keep func(TraceEntry) bool) []TraceEntry {
	var out []TraceEntry
	for _, e := range tr.Entries() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
