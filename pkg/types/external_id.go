package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ExternalID is an identifier issued by the host platform. Storefront
// payloads send product, variant and customer ids either as JSON numbers or
// as strings; both decode to the same canonical string.
type ExternalID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ExternalID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ExternalID(strings.TrimSpace(s))
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ExternalID(num.String())
	return nil
}

func (id ExternalID) String() string {
	return string(id)
}

// IsZero reports whether the id was absent, null or blank.
func (id ExternalID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}
