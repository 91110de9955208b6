package model

// CandidateSet holds the members of an ortholog group keyed by id. The
// insertion order is kept since tie-breaks depend on it. Every method that
// changes membership returns a new set and leaves the receiver untouched.
type CandidateSet struct {
	ids  []string
	byID map[string]Sequence
}

// NewCandidateSet builds a set from sequences. A repeated id keeps its first position
// and takes the last value.
func NewCandidateSet(seqs ...Sequence) *CandidateSet {
	c := &CandidateSet{
		ids:  make([]string, 0, len(seqs)),
		byID: make(map[string]Sequence, len(seqs)),
	}
	for _, s := range seqs {
		if _, ok := c.byID[s.ID]; !ok {
			c.ids = append(c.ids, s.ID)
		}
		c.byID[s.ID] = s
	}
	return c
}

func (c *CandidateSet) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

func (c *CandidateSet) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byID[id]
	return ok
}

func (c *CandidateSet) Get(id string) (Sequence, bool) {
	if c == nil {
		return Sequence{}, false
	}
	s, ok := c.byID[id]
	return s, ok
}

// IDs returns the ids in insertion order.
func (c *CandidateSet) IDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Sequences returns the members in insertion order.
func (c *CandidateSet) Sequences() []Sequence {
	if c == nil {
		return nil
	}
	out := make([]Sequence, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// With returns a copy that also contains s. An existing member with the same id
// is replaced in place.
func (c *CandidateSet) With(s Sequence) *CandidateSet {
	return NewCandidateSet(append(c.Sequences(), s)...)
}

// Filter returns a copy holding the members for which keep returns true.
func (c *CandidateSet) Filter(keep func(Sequence) bool) *CandidateSet {
	out := make([]Sequence, 0, c.Len())
	for _, s := range c.Sequences() {
		if keep(s) {
			out = append(out, s)
		}
	}
	return NewCandidateSet(out...)
}

// Subset returns the members listed in ids, in that order. Unknown ids are
// skipped.
func (c *CandidateSet) Subset(ids []string) *CandidateSet {
	out := make([]Sequence, 0, len(ids))
	for _, id := range ids {
		if s, ok := c.Get(id); ok {
			out = append(out, s)
		}
	}
	return NewCandidateSet(out...)
}
