// SPDX-License-Identifier: MIT

package registry

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// minimalWorkflow and minimalAction describe only the keys
// strict mode requires to be present; jsonschema.ForType derives a
// schema from them that rejects a workflow or action definition
// missing its required top level shape. Full validation against
// GitHub's published workflow schema is out of scope: this is a sanity
// floor, not a replacement for it.
type minimalWorkflow struct {
	Name string         `json:"name,omitempty"`
	On   any            `json:"on"`
	Jobs map[string]any `json:"jobs"`
}

type minimalAction struct {
	Name   string `json:"name"`
	Runs   any    `json:"runs"`
	Inputs any    `json:"inputs,omitempty"`
}

var (
	workflowSchema *jsonschema.Resolved
	actionSchema   *jsonschema.Resolved
)

func init() {
	workflowSchema = mustResolve(minimalWorkflow{})
	actionSchema = mustResolve(minimalAction{})
}

func mustResolve(zero any) *jsonschema.Resolved {
	s, err := jsonschema.ForType(reflect.TypeOf(zero), &jsonschema.ForOptions{})
	if err != nil {
		panic(fmt.Sprintf("registry: building schema for %T: %v", zero, err))
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("registry: resolving schema for %T: %v", zero, err))
	}
	return resolved
}

// ValidateStrict re-decodes source as a generic document and checks it
// against the minimal schema for kind. It is invoked
// ahead of model parsing so a malformed document produces one clear
// schema error instead of a confusing downstream nil-pointer.
func ValidateStrict(kind Kind, source []byte) error {
	var raw any
	if err := yaml.Unmarshal(source, &raw); err != nil {
		return fmt.Errorf("decoding yaml: %w", err)
	}
	normalized, err := json.Marshal(normalizeForJSON(raw))
	if err != nil {
		return fmt.Errorf("normalizing document: %w", err)
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		return fmt.Errorf("normalizing document: %w", err)
	}

	schema := workflowSchema
	if kind == KindAction {
		schema = actionSchema
	}
	if err := schema.Validate(instance); err != nil {
		return err
	}
	return nil
}

// normalizeForJSON converts the map[any]any shapes yaml.v3 produces
// into map[string]any so encoding/json can marshal them.
func normalizeForJSON(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeForJSON(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[fmt.Sprintf("%v", k)] = normalizeForJSON(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeForJSON(vv)
		}
		return out
	default:
		return val
	}
}
