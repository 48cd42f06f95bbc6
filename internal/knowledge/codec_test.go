package knowledge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsDocumentOrder(t *testing.T) {
	data := []byte(`{"zz": {"b": [1, 1], "a": [0.5, 2]}, "aa": {}, "": {"echo": [0, 1]}}`)

	k, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"zz", "aa", ""}, k.Prompts())
	zz, _ := k.Get("zz")
	assert.Equal(t, []string{"b", "a"}, zz.Keys())
	e, _ := zz.Get("a")
	assert.Equal(t, Entry{Score: 0.5, Trials: 2}, e)
}

func TestEncodeKeepsInsertionOrder(t *testing.T) {
	k := New()
	k.Set("hello", responsesOf("hi there", Entry{Score: 3.5, Trials: 4}, "go away", Entry{Score: 0, Trials: 1}))
	k.Set("a\"b", responsesOf("ü", Entry{Score: 1, Trials: 1}))

	data, err := Encode(k)
	require.NoError(t, err)
	assert.Equal(t, `{"hello":{"hi there":[3.5,4],"go away":[0,1]},"a\"b":{"ü":[1,1]}}`, string(data))

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, k.Prompts(), back.Prompts())
	r, _ := back.Get("hello")
	assert.Equal(t, []string{"hi there", "go away"}, r.Keys())
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(New())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"not json":       `hello`,
		"array":          `[1, 2]`,
		"null":           `null`,
		"truncated":      `{"a": {"b": [1, 1]}`,
		"trailing data":  `{} {}`,
		"entry string":   `{"a": {"b": "x"}}`,
		"entry short":    `{"a": {"b": [1]}}`,
		"entry long":     `{"a": {"b": [1, 1, 1]}}`,
		"zero trials":    `{"a": {"b": [0, 0]}}`,
		"partial trials": `{"a": {"b": [1, 1.5]}}`,
		"responses list": `{"a": [1, 1]}`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestEntryJSON(t *testing.T) {
	data, err := json.Marshal(Entry{Score: 0.25, Trials: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `[0.25, 3]`, string(data))

	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`[2, 2.0]`), &e))
	assert.Equal(t, Entry{Score: 2, Trials: 2}, e)
}
