package utils

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID parses a hex ObjectID taken from a path or query parameter.
func ParseObjectID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// ParseOptionalObjectID treats "", "null" and "root" as no id.
func ParseOptionalObjectID(raw string) (*primitive.ObjectID, bool) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "null", "root":
		return nil, true
	}
	id, ok := ParseObjectID(raw)
	if !ok {
		return nil, false
	}
	return &id, true
}

// ValidationMessage flattens ozzo validation errors into one message. When
// every field failed with the same text that text is returned once.
func ValidationMessage(err error) string {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	keys := make([]string, 0, len(fieldErrs))
	for k := range fieldErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]bool)
	var msgs []string
	for _, k := range keys {
		msg := fieldErrs[k].Error()
		if seen[msg] {
			continue
		}
		seen[msg] = true
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}
