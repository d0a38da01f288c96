package memory

// interactionRing is a fixed-capacity ring buffer of interactions. The
// capacity bound is structural: push past capacity overwrites the oldest
// entry, so the ≤ MaxInteractions invariant cannot be violated by callers.
type interactionRing struct {
	buf  []Interaction
	head int // index of the oldest entry
	size int
}

func newInteractionRing(capacity int) *interactionRing {
	if capacity <= 0 {
		capacity = MaxInteractions
	}
	return &interactionRing{buf: make([]Interaction, capacity)}
}

func (r *interactionRing) len() int {
	return r.size
}

func (r *interactionRing) cap() int {
	return len(r.buf)
}

// push appends an interaction, evicting the oldest entry when full.
// Returns the evicted interaction and true if an eviction happened.
func (r *interactionRing) push(in Interaction) (Interaction, bool) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = in
		r.size++
		return Interaction{}, false
	}

	evicted := r.buf[r.head]
	r.buf[r.head] = in
	r.head = (r.head + 1) % len(r.buf)
	return evicted, true
}

// at returns a pointer to the i-th entry in insertion order (0 = oldest).
// The pointer stays valid until the entry is evicted or overwritten.
func (r *interactionRing) at(i int) *Interaction {
	return &r.buf[(r.head+i)%len(r.buf)]
}

// snapshot copies all retained interactions in insertion order.
func (r *interactionRing) snapshot() []Interaction {
	out := make([]Interaction, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = *r.at(i)
	}
	return out
}

// replace discards the current contents and refills the ring in order.
// Entries beyond capacity are dropped from the front (oldest first).
func (r *interactionRing) replace(list []Interaction) {
	r.head = 0
	r.size = 0
	start := 0
	if len(list) > len(r.buf) {
		start = len(list) - len(r.buf)
	}
	for _, in := range list[start:] {
		r.push(in)
	}
}
