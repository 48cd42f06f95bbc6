/*
Package knowledge provides the data model for learned prompt/response pairs.

A Knowledge value maps prompt strings to Responses, and Responses map response
strings to an Entry holding the accumulated score and trial count. Both maps
preserve insertion order, which is significant: reply tie-breaking depends on
the order prompts and responses were first learned.

Serialized form:

	{"hello": {"hi there": [3.5, 4], "go away": [0.0, 1]}}
*/
package knowledge

// Entry is the accumulated result of learning one (prompt, response) pair.
type Entry struct {
	// Score is the sum of clamped scores over all learning events.
	Score float64

	// Trials is the number of learning events, always >= 1 once stored.
	Trials int
}

// Add returns the elementwise sum of two entries.
func (e Entry) Add(other Entry) Entry {
	return Entry{Score: e.Score + other.Score, Trials: e.Trials + other.Trials}
}

// Responses is an insertion-ordered map of response text to Entry.
type Responses struct {
	order   []string
	entries map[string]Entry
}

// NewResponses creates an empty response map.
func NewResponses() *Responses {
	return &Responses{entries: make(map[string]Entry)}
}

// Len returns the number of responses.
func (r *Responses) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Keys returns responses in insertion order.
func (r *Responses) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// Get returns the entry for a response.
func (r *Responses) Get(response string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[response]
	return e, ok
}

// Each calls fn for every response in insertion order.
func (r *Responses) Each(fn func(response string, e Entry)) {
	if r == nil {
		return
	}
	for _, response := range r.order {
		fn(response, r.entries[response])
	}
}

// Put sets the entry for a response. New responses are appended; existing
// ones keep their position.
func (r *Responses) Put(response string, e Entry) {
	if _, ok := r.entries[response]; !ok {
		r.order = append(r.order, response)
	}
	r.entries[response] = e
}

// Clone returns a deep copy.
func (r *Responses) Clone() *Responses {
	c := NewResponses()
	if r == nil {
		return c
	}
	c.order = append(c.order, r.order...)
	for k, v := range r.entries {
		c.entries[k] = v
	}
	return c
}

// Knowledge is an insertion-ordered map of prompt text to Responses.
type Knowledge struct {
	order   []string
	prompts map[string]*Responses
}

// New creates an empty knowledge base.
func New() *Knowledge {
	return &Knowledge{prompts: make(map[string]*Responses)}
}

// Len returns the number of known prompts.
func (k *Knowledge) Len() int {
	if k == nil {
		return 0
	}
	return len(k.order)
}

// Prompts returns known prompts in insertion order.
func (k *Knowledge) Prompts() []string {
	if k == nil {
		return nil
	}
	prompts := make([]string, len(k.order))
	copy(prompts, k.order)
	return prompts
}

// Get returns the responses learned for a prompt.
func (k *Knowledge) Get(prompt string) (*Responses, bool) {
	if k == nil {
		return nil, false
	}
	r, ok := k.prompts[prompt]
	return r, ok
}

// Set replaces the responses for a prompt wholesale.
func (k *Knowledge) Set(prompt string, r *Responses) {
	if _, ok := k.prompts[prompt]; !ok {
		k.order = append(k.order, prompt)
	}
	if r == nil {
		r = NewResponses()
	}
	k.prompts[prompt] = r
}

// Merge overlays partial onto k at prompt granularity: every prompt in
// partial replaces the stored response map entirely, prompts absent from
// partial are untouched. Existing prompts keep their position.
func (k *Knowledge) Merge(partial *Knowledge) {
	if partial == nil {
		return
	}
	for _, prompt := range partial.order {
		k.Set(prompt, partial.prompts[prompt].Clone())
	}
}

// Clone returns a deep copy.
func (k *Knowledge) Clone() *Knowledge {
	c := New()
	if k == nil {
		return c
	}
	for _, prompt := range k.order {
		c.Set(prompt, k.prompts[prompt].Clone())
	}
	return c
}

// Stats summarizes a knowledge base.
type Stats struct {
	Prompts   int     `json:"prompts"`
	Responses int     `json:"responses"`
	Trials    int     `json:"trials"`
	Score     float64 `json:"score"`
}

// Stats counts prompts, (prompt, response) pairs, trials and total score.
func (k *Knowledge) Stats() Stats {
	var s Stats
	if k == nil {
		return s
	}
	s.Prompts = len(k.order)
	for _, prompt := range k.order {
		r := k.prompts[prompt]
		s.Responses += r.Len()
		for _, resp := range r.order {
			e := r.entries[resp]
			s.Trials += e.Trials
			s.Score += e.Score
		}
	}
	return s
}
