// Package validate checks untrusted decoded JSON against simple object shapes
// before anything reaches the store.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Issue is a single offending field.
type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Reason
}

// Error collects every issue found in one payload.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return strings.Join(parts, "; ")
}

// Object walks the fields of a decoded JSON object, accumulating issues.
// Construct it with NewObject and call Err once every field has been read.
type Object struct {
	fields map[string]any
	issues []Issue
}

// NewObject starts validating v. A value that is not a JSON object records a
// single issue against "value"; field reads on it then yield zero values.
func NewObject(v any) *Object {
	o := &Object{}
	m, ok := v.(map[string]any)
	if !ok {
		o.issues = append(o.issues, Issue{Field: "value", Reason: "Expected object, received " + TypeName(v)})
		return o
	}
	o.fields = m
	return o
}

// String reads a required string field.
func (o *Object) String(field string) string {
	if o.fields == nil {
		return ""
	}
	raw, ok := o.fields[field]
	if !ok {
		o.fail(field, "Required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		o.fail(field, "Expected string, received "+TypeName(raw))
		return ""
	}
	return s
}

// NullableString reads an optional string field that may also be null.
// Absent and null both come back as nil.
func (o *Object) NullableString(field string) *string {
	if o.fields == nil {
		return nil
	}
	raw, ok := o.fields[field]
	if !ok || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		o.fail(field, "Expected string, received "+TypeName(raw))
		return nil
	}
	return &s
}

// Err returns the accumulated issues as *Error, or nil.
func (o *Object) Err() error {
	if len(o.issues) == 0 {
		return nil
	}
	return &Error{Issues: o.issues}
}

func (o *Object) fail(field, reason string) {
	o.issues = append(o.issues, Issue{Field: field, Reason: reason})
}

// TypeName names the JSON type of a value produced by encoding/json.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
