package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// FieldType is the JSON type a required field must carry
type FieldType int

const (
	TypeBool FieldType = iota
	TypeNumber
	TypeString
	TypeObject
	TypeArray
)

// String returns the JSON name of the type
func (t FieldType) String() string {
	switch t {
	case TypeBool:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return fmt.Sprintf("FieldType(%d)", t)
	}
}

// Field names a top-level required field and its JSON type
type Field struct {
	Name string
	Type FieldType
}

// Validated is implemented by response types with required fields.
// Every other field is optional: absent, null or mistyped values leave the
// Go field at its zero value.
type Validated interface {
	RequiredFields() []Field
}

// Encode serializes v to compact JSON. Fields tagged omitempty with no value
// are left out.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return data, nil
}

// Decode parses data into v, which must be a non-nil pointer.
//
// It fails only for syntactically invalid JSON, a body that is not a JSON
// object when v is Validated, or a missing/mistyped required field.
func Decode(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return &DecodeError{Kind: MalformedJSON, Err: errors.New("body is not valid JSON")}
	}

	if validated, ok := v.(Validated); ok {
		if err := checkRequired(trimmed, validated.RequiredFields()); err != nil {
			return err
		}
	}

	err := json.Unmarshal(trimmed, v)
	if err == nil {
		return nil
	}

	// Unmarshal keeps going past type mismatches and fills what it can;
	// required fields were already checked above so the rest is tolerated.
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return &DecodeError{Kind: MalformedJSON, Err: err}
}

func checkRequired(data []byte, fields []Field) error {
	if len(fields) == 0 {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &DecodeError{Kind: MalformedJSON, Err: fmt.Errorf("expected a JSON object: %w", err)}
	}

	for _, f := range fields {
		value, ok := raw[f.Name]
		if !ok || string(value) == "null" {
			return &DecodeError{Kind: MissingRequiredField, Field: f.Name}
		}
		if jsonType(value) != f.Type {
			return &DecodeError{
				Kind:  TypeMismatch,
				Field: f.Name,
				Err:   fmt.Errorf("expected %s, got %s", f.Type, string(value)),
			}
		}
	}
	return nil
}

func jsonType(value json.RawMessage) FieldType {
	switch value[0] {
	case 't', 'f':
		return TypeBool
	case '"':
		return TypeString
	case '{':
		return TypeObject
	case '[':
		return TypeArray
	default:
		return TypeNumber
	}
}

// Number reads an optional numeric field kept as raw JSON. Absent, null
// and non-numeric values report false.
func Number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == 'n' || jsonType(raw) != TypeNumber {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeBody substitutes an error envelope for an empty non-2xx body so
// that the decoder always sees a JSON object.
func NormalizeBody(statusCode int, body []byte) []byte {
	if len(bytes.TrimSpace(body)) > 0 {
		return body
	}
	if statusCode >= 200 && statusCode < 300 {
		return []byte(`{}`)
	}
	envelope, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   fmt.Sprintf("HTTP %d %s", statusCode, http.StatusText(statusCode)),
	})
	return envelope
}
