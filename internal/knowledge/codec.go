package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// MarshalJSON encodes an entry as the pair [score, trials].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Score, e.Trials})
}

// UnmarshalJSON decodes the pair [score, trials].
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("entry must be [score, trials]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("entry must have 2 elements, got %d", len(pair))
	}
	trials := pair[1]
	if trials != math.Trunc(trials) || trials < 1 {
		return fmt.Errorf("entry trial count must be a positive integer, got %v", trials)
	}
	e.Score = pair[0]
	e.Trials = int(trials)
	return nil
}

// MarshalJSON encodes responses as an object in insertion order.
func (r *Responses) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return encodeObject(r.order, func(key string) ([]byte, error) {
		return r.entries[key].MarshalJSON()
	})
}

// UnmarshalJSON decodes an object of entries, keeping key order.
func (r *Responses) UnmarshalJSON(data []byte) error {
	decoded := NewResponses()
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("response %q: %w", key, err)
		}
		decoded.Put(key, e)
		return nil
	})
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}

// MarshalJSON encodes the knowledge base as an object in insertion order.
func (k *Knowledge) MarshalJSON() ([]byte, error) {
	if k == nil {
		return []byte("{}"), nil
	}
	return encodeObject(k.order, func(key string) ([]byte, error) {
		return k.prompts[key].MarshalJSON()
	})
}

// UnmarshalJSON decodes the knowledge base, keeping prompt order.
func (k *Knowledge) UnmarshalJSON(data []byte) error {
	decoded := New()
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		r := NewResponses()
		if err := r.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("prompt %q: %w", key, err)
		}
		decoded.Set(key, r)
		return nil
	})
	if err != nil {
		return err
	}
	*k = *decoded
	return nil
}

// Decode parses the serialized store format.
func Decode(data []byte) (*Knowledge, error) {
	k := New()
	if err := k.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return k, nil
}

// Encode serializes k in the store format.
func Encode(k *Knowledge) ([]byte, error) {
	return k.MarshalJSON()
}

// encodeObject writes a JSON object whose members appear in keys order.
func encodeObject(keys []string, value func(key string) ([]byte, error)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := value(key)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", key, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeObject streams the members of a JSON object to fn in document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}
