// SPDX-License-Identifier: MIT

package yamlpath

import "fmt"

// InvalidInputError wraps a YAML syntax error encountered while parsing
// a Document: fatal in strict mode, logged-and-skipped otherwise. That
// policy decision belongs to the caller (the audit driver); this
// package only reports it.
type InvalidInputError struct {
	Err error
}

func (e *InvalidInputError) Error() string { return fmt.Sprintf("invalid YAML: %v", e.Err) }
func (e *InvalidInputError) Unwrap() error { return e.Err }

// ExpectedMappingError is returned when a route's key component is
// descended against a node that is not a mapping.
type ExpectedMappingError struct {
	Key string
}

func (e *ExpectedMappingError) Error() string {
	return fmt.Sprintf("yamlpath: expected a mapping to look up key %q", e.Key)
}

// ExpectedListError is returned when a route's index component is
// descended against a node that is not a sequence.
type ExpectedListError struct {
	Index int
}

func (e *ExpectedListError) Error() string {
	return fmt.Sprintf("yamlpath: expected a sequence to look up index %d", e.Index)
}

// ExhaustedMappingError is returned when a route's key component names a
// key absent from the mapping being descended.
type ExhaustedMappingError struct {
	Key string
}

func (e *ExhaustedMappingError) Error() string {
	return fmt.Sprintf("yamlpath: mapping has no key %q", e.Key)
}

// ExhaustedListError is returned when a route's index component is out
// of range for the sequence being descended.
type ExhaustedListError struct {
	Index int
	Len    int
}

func (e *ExhaustedListError) Error() string {
	return fmt.Sprintf("yamlpath: index %d out of range for sequence of length %d", e.Index, e.Len)
}

// UnexpectedNodeError is returned when descent reaches a node kind the
// algorithm has no rule for (e.g. a document node nested where a mapping
// or sequence was expected).
type UnexpectedNodeError struct {
	Kind string
}

func (e *UnexpectedNodeError) Error() string {
	return fmt.Sprintf("yamlpath: unexpected node kind %s", e.Kind)
}
