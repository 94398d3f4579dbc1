// Package schema checks state payloads against the JSON Schema a device
// advertises in its StateSchema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/urmzd/hive-hotwater/pkg/device"
)

// Validator compiles schemas once and keeps them keyed by document bytes.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{cache: make(map[string]*jsonschema.Schema)}
}

// Validate checks payload against schemaDoc. An empty or null document
// accepts anything. Payload failures wrap device.ErrValidation; a broken
// schema document does not.
func (v *Validator) Validate(schemaDoc json.RawMessage, payload map[string]any) error {
	if isEmpty(schemaDoc) {
		return nil
	}

	compiled, err := v.compile(schemaDoc)
	if err != nil {
		return fmt.Errorf("compile state schema: %w", err)
	}

	if err := compiled.Validate(normalize(payload)); err != nil {
		return fmt.Errorf("%w: %w", device.ErrValidation, err)
	}
	return nil
}

func isEmpty(doc json.RawMessage) bool {
	s := string(doc)
	return s == "" || s == "{}" || s == "null"
}

// normalize round-trips payload through encoding/json so Go-typed numbers
// and slices reach the validator in the shapes it understands.
func normalize(payload map[string]any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return payload
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return payload
	}
	return out
}

func (v *Validator) compile(schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaDoc)

	v.mu.RLock()
	s, ok := v.cache[key]
	v.mu.RUnlock()
	if ok {
		return s, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDoc))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("state.json", doc); err != nil {
		return nil, err
	}
	compiled, err := c.Compile("state.json")
	if err != nil {
		return nil, err
	}

	v.cache[key] = compiled
	return compiled, nil
}
