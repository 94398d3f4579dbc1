package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/urmzd/hive-hotwater/pkg/device"
)

func operationModeSchema() json.RawMessage {
	return json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"operation_mode": {"type": "string", "enum": ["eco", "on", "off"]}
		},
		"required": ["operation_mode"],
		"additionalProperties": false
	}`)
}

func TestValidate_ValidPayload(t *testing.T) {
	v := NewValidator()

	for _, mode := range []string{"eco", "on", "off"} {
		if err := v.Validate(operationModeSchema(), map[string]any{"operation_mode": mode}); err != nil {
			t.Errorf("mode %q: expected valid payload, got: %v", mode, err)
		}
	}
}

func TestValidate_InvalidEnum(t *testing.T) {
	v := NewValidator()

	err := v.Validate(operationModeSchema(), map[string]any{"operation_mode": "boost"})
	if !errors.Is(err, device.ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	v := NewValidator()

	err := v.Validate(operationModeSchema(), map[string]any{})
	if !errors.Is(err, device.ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
}

func TestValidate_UnknownProperty(t *testing.T) {
	v := NewValidator()

	err := v.Validate(operationModeSchema(), map[string]any{
		"operation_mode":     "on",
		"target_temperature": 55,
	})
	if err == nil {
		t.Error("expected validation error for unknown property")
	}
}

func TestValidate_WrongType(t *testing.T) {
	v := NewValidator()

	err := v.Validate(operationModeSchema(), map[string]any{"operation_mode": 1})
	if err == nil {
		t.Error("expected validation error for wrong type")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()

	for _, doc := range []json.RawMessage{nil, json.RawMessage(`{}`), json.RawMessage(`null`)} {
		if err := v.Validate(doc, map[string]any{"anything": "goes"}); err != nil {
			t.Errorf("schema %q should skip validation, got: %v", doc, err)
		}
	}
}

func TestValidate_BrokenSchema(t *testing.T) {
	v := NewValidator()

	err := v.Validate(json.RawMessage(`{"type": 12`), map[string]any{})
	if err == nil {
		t.Fatal("expected compile error")
	}
	if errors.Is(err, device.ErrValidation) {
		t.Error("a broken schema is not a payload validation failure")
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(operationModeSchema(), map[string]any{"operation_mode": "on"}); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(operationModeSchema(), map[string]any{"operation_mode": "off"}); err != nil {
		t.Fatal(err)
	}

	v.mu.RLock()
	cacheSize := len(v.cache)
	v.mu.RUnlock()
	if cacheSize != 1 {
		t.Errorf("expected 1 cached schema, got %d", cacheSize)
	}
}
