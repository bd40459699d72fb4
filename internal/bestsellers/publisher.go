package bestsellers

// Assigner hands out small integer publisher IDs in first-seen order.
// A fresh Assigner is used for every fetch pass; IDs are not stable across runs.
type Assigner struct {
	ids  map[string]int
	next int
}

// NewAssigner returns an Assigner whose first ID is 1.
func NewAssigner() *Assigner {
	return &Assigner{ids: make(map[string]int)}
}

// Assign returns the ID for name, allocating the next one on first sight.
func (a *Assigner) Assign(name string) int {
	if id, ok := a.ids[name]; ok {
		return id
	}
	a.next++
	a.ids[name] = a.next
	return a.next
}

// Len returns the number of distinct publishers seen.
func (a *Assigner) Len() int {
	return len(a.ids)
}
