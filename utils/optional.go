package utils

import (
	"bytes"
	"encoding/json"
)

// OptionalString tells an absent JSON field apart from an explicit null.
//   - Present=false: field absent, leave the value alone
//   - Present=true, Value=nil: field is null
//   - Present=true, Value=&s: field holds s
type OptionalString struct {
	Present bool
	Value   *string
}

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
