package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responsesOf(pairs ...interface{}) *Responses {
	r := NewResponses()
	for i := 0; i < len(pairs); i += 2 {
		r.Put(pairs[i].(string), pairs[i+1].(Entry))
	}
	return r
}

func TestResponsesPreserveInsertionOrder(t *testing.T) {
	r := NewResponses()
	r.Put("zeta", Entry{Score: 1, Trials: 1})
	r.Put("alpha", Entry{Score: 0, Trials: 1})
	r.Put("zeta", Entry{Score: 2, Trials: 2})

	assert.Equal(t, []string{"zeta", "alpha"}, r.Keys())
	e, ok := r.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, Entry{Score: 2, Trials: 2}, e)
}

func TestResponsesCloneIsIndependent(t *testing.T) {
	r := responsesOf("hi", Entry{Score: 1, Trials: 1})
	c := r.Clone()
	c.Put("hi", Entry{Score: 5, Trials: 9})
	c.Put("new", Entry{Score: 1, Trials: 1})

	e, _ := r.Get("hi")
	assert.Equal(t, Entry{Score: 1, Trials: 1}, e)
	assert.Equal(t, 1, r.Len())
}

func TestKnowledgeMerge(t *testing.T) {
	k := New()
	k.Set("a", responsesOf("x", Entry{Score: 1, Trials: 1}, "y", Entry{Score: 0, Trials: 2}))
	k.Set("b", responsesOf("z", Entry{Score: 1, Trials: 1}))

	partial := New()
	partial.Set("c", responsesOf("w", Entry{Score: 1, Trials: 1}))
	partial.Set("a", responsesOf("q", Entry{Score: 0.5, Trials: 1}))

	k.Merge(partial)

	assert.Equal(t, []string{"a", "b", "c"}, k.Prompts())

	a, _ := k.Get("a")
	assert.Equal(t, []string{"q"}, a.Keys(), "merge replaces a prompt's responses wholesale")

	b, _ := k.Get("b")
	assert.Equal(t, []string{"z"}, b.Keys())

	// later changes to partial do not leak into k
	pa, _ := partial.Get("a")
	pa.Put("leak", Entry{Score: 1, Trials: 1})
	assert.Equal(t, 1, a.Len())
}

func TestKnowledgeSetNil(t *testing.T) {
	k := New()
	k.Set("", nil)

	r, ok := k.Get("")
	require.True(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestEntryAdd(t *testing.T) {
	got := Entry{Score: 1.5, Trials: 2}.Add(Entry{Score: 0.25, Trials: 1})
	assert.Equal(t, Entry{Score: 1.75, Trials: 3}, got)
}

func TestStats(t *testing.T) {
	k := New()
	k.Set("a", responsesOf("x", Entry{Score: 1, Trials: 1}, "y", Entry{Score: 0.5, Trials: 2}))
	k.Set("b", responsesOf("x", Entry{Score: 3, Trials: 4}))

	assert.Equal(t, Stats{Prompts: 2, Responses: 3, Trials: 7, Score: 4.5}, k.Stats())

	var nilK *Knowledge
	assert.Equal(t, Stats{}, nilK.Stats())
}
