package grading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	errNotString = errors.New("answer must be a string")
	errNotBool   = errors.New(`answer must be true or false`)
	errNotList   = errors.New("answer must be a list of strings")
	errNotObject = errors.New("answer must be an object of strings")
)

// IsBlank reports whether raw carries no answer at all.
func IsBlank(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func DecodeText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errNotString
	}
	return s, nil
}

// DecodeBool accepts a JSON bool or the strings "true" / "false".
func DecodeBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	s, err := DecodeText(raw)
	if err != nil {
		return false, errNotBool
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, errNotBool
}

func DecodeStringList(raw json.RawMessage) ([]string, error) {
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errNotList
	}
	return out, nil
}

func DecodeStringMap(raw json.RawMessage) (map[string]string, error) {
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errNotObject
	}
	return out, nil
}

// EncodeAnswer marshals a Go value into an answer payload.
func EncodeAnswer(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode answer: %w", err)
	}
	return b, nil
}

// textEqual compares trimmed text, folding case unless caseSensitive.
// Inner white space must match exactly.
func textEqual(a, b string, caseSensitive bool) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
