package los

// Modifier is one to-hit term and the reason it applies.
type Modifier struct {
	Value  int    `json:"value"`
	Reason string `json:"reason"`
}

// Result is the outcome of an evaluation: either Computed or Impossible.
type Result interface {
	// Modifiers returns the recorded ledger entries in order.
	Modifiers() []Modifier
	isResult()
}

// Computed is a legal shot. Total is always the sum of Entries.
type Computed struct {
	Total   int
	Entries []Modifier
}

// Impossible is a shot that cannot be taken. Entries holds whatever the ledger
// recorded before and after the override and is for display only.
type Impossible struct {
	Reason  string
	Entries []Modifier
}

func (c Computed) Modifiers() []Modifier   { return c.Entries }
func (i Impossible) Modifiers() []Modifier { return i.Entries }

func (Computed) isResult()   {}
func (Impossible) isResult() {}
