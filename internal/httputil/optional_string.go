package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks presence and value for JSON PATCH semantics (RFC 7396).
// A *string cannot tell "absent" from null:
//   - Present=false: field absent from JSON (leave alone)
//   - Present=true, Value=nil: field is JSON null (move to root)
//   - Present=true, Value=&"folder-…": field has value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the field is present in the JSON
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
