package goals

import (
	"bytes"
	"encoding/json"
	"fmt"

	"budget/internal/core"
)

// MarshalJSON encodes the goals as a JSON object whose keys follow the
// store's iteration order. Amounts are JSON numbers.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(s.amounts[k].String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of category to number, keeping the
// order in which keys appear in the document.
func (s *Store) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = Store{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("budget goals: expected object, got %v", tok)
	}

	out := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("budget goals: %q: %w", key, err)
		}
		amount, err := core.ParseAmount(n.String())
		if err != nil {
			return fmt.Errorf("budget goals: %q: %w", key, err)
		}
		out.Set(key, amount)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = *out
	return nil
}
