// SPDX-License-Identifier: MIT

// Package finding implements the finding/location/fix data model:
// typed findings with severity, confidence, persona, one or more
// locations, and optional fixes.
package finding

import (
	"fmt"
	"strings"

	"github.com/esacteksab/gh-audit/yamlpath"
)

// Severity ranks how dangerous a finding is.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityInformational
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityInformational:
		return "informational"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Confidence ranks how sure an audit is that a finding is a true
// positive.
type Confidence int

const (
	ConfidenceUnknown Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Persona classifies findings by audience sensitivity; auditor is the
// most permissive (everything is surfaced), regular the least.
type Persona int

const (
	PersonaRegular Persona = iota
	PersonaPedantic
	PersonaAuditor
)

func (p Persona) String() string {
	switch p {
	case PersonaPedantic:
		return "pedantic"
	case PersonaAuditor:
		return "auditor"
	default:
		return "regular"
	}
}

// AtLeast reports whether p is at least as permissive as filter, i.e.
// filter is allowed to pass p through (auditor <= pedantic <= regular
// in strictness, the opposite in permissiveness: regular < pedantic <
// auditor).
func (p Persona) AtLeast(filter Persona) bool { return p >= filter }

// LocationKind discriminates a location's role within a Finding.
type LocationKind int

const (
	// LocationPrimary is the main site of the finding; every Finding
	// needs at least one.
	LocationPrimary LocationKind = iota
	// LocationRelated points to a contributing but secondary site.
	LocationRelated
	// LocationHidden carries span information (for ignore-comment
	// scanning) without appearing in rendered output.
	LocationHidden
)

// FeatureKind selects which yamlpath extraction mode a symbolic
// location concretizes with.
type FeatureKind int

const (
	FeatureNormal FeatureKind = iota
	FeatureSubfeature
	FeatureKeyOnly
)

// SymbolicLocation names a location within an input before it has been
// resolved against that input's Document.
type SymbolicLocation struct {
	InputKey    string
	Annotation  string
	URL         string
	Route       yamlpath.Route
	FeatureKind FeatureKind
	Kind        LocationKind

	// Subfeature is consulted only when FeatureKind == FeatureSubfeature.
	Subfeature yamlpath.Subfeature
}

// Location is a SymbolicLocation concretized against a Document.
type Location struct {
	SymbolicLocation
	Feature yamlpath.Feature
}

// Concretize resolves sl against doc, choosing the extraction mode
// sl.FeatureKind names.
func Concretize(doc *yamlpath.Document, sl SymbolicLocation) (Location, error) {
	switch sl.FeatureKind {
	case FeatureKeyOnly:
		f, err := doc.QueryKeyOnly(sl.Route)
		if err != nil {
			return Location{}, fmt.Errorf("finding: key-only route %s: %w", sl.Route, err)
		}
		return Location{SymbolicLocation: sl, Feature: f}, nil
	case FeatureSubfeature:
		enclosing, err := doc.QueryPretty(sl.Route)
		if err != nil {
			return Location{}, fmt.Errorf("finding: subfeature route %s: %w", sl.Route, err)
		}
		span, ok := sl.Subfeature.Resolve(enclosing)
		if !ok {
			return Location{}, fmt.Errorf("finding: subfeature not found within route %s", sl.Route)
		}
		startRow, startCol := doc.RowCol(span.Start)
		endRow, endCol := doc.RowCol(span.End)
		f := yamlpath.Feature{
			Route:      sl.Route,
			Mode:       yamlpath.ModeExact,
			Span:       span,
			StartPoint: yamlpath.Point{Row: startRow, Col: startCol},
			EndPoint:   yamlpath.Point{Row: endRow, Col: endCol},
			Text:       string(doc.Source[span.Start:span.End]),
			Comments:   doc.FeatureComments(yamlpath.Feature{StartPoint: yamlpath.Point{Row: startRow}, EndPoint: yamlpath.Point{Row: endRow}}),
		}
		return Location{SymbolicLocation: sl, Feature: f}, nil
	default:
		f, _, err := doc.QueryExact(sl.Route)
		if err != nil {
			return Location{}, fmt.Errorf("finding: route %s: %w", sl.Route, err)
		}
		return Location{SymbolicLocation: sl, Feature: f}, nil
	}
}

// Disposition classifies how safe a Fix is to apply automatically.
type Disposition int

const (
	DispositionSafe Disposition = iota
	DispositionUnsafe
	DispositionManual
)

// PatchOpKind enumerates the patcher's operation kinds.
type PatchOpKind int

const (
	OpReplace PatchOpKind = iota
	OpAdd
	OpMergeInto
	OpRemove
)

// PatchOp is one edit a Fix asks the patcher to apply.
type PatchOp struct {
	Kind  PatchOpKind
	Route yamlpath.Route
	Key   string // OpAdd, OpMergeInto
	Value string // OpReplace, OpAdd, OpMergeInto
}

// Fix is a named, sortable change targeting a single input.
type Fix struct {
	Title       string
	Disposition Disposition
	InputKey    string
	Ops         []PatchOp
}

// Finding is a single audit result.
type Finding struct {
	Ident       string
	Description string
	URL         string
	Severity    Severity
	Confidence  Confidence
	Persona     Persona
	Locations   []Location
	Ignored     bool
	Fixes       []Fix
}

// Builder accumulates a Finding's fields before concretization.
type Builder struct {
	ident       string
	description string
	url         string
	severity    Severity
	confidence  Confidence
	persona     Persona
	locations   []SymbolicLocation
	fixes       []Fix
}

// NewBuilder starts a Finding for the named audit.
func NewBuilder(ident, description string) *Builder {
	return &Builder{ident: ident, description: description, persona: PersonaRegular}
}

func (b *Builder) URL(url string) *Builder               { b.url = url; return b }
func (b *Builder) Severity(s Severity) *Builder           { b.severity = s; return b }
func (b *Builder) Confidence(c Confidence) *Builder       { b.confidence = c; return b }
func (b *Builder) Persona(p Persona) *Builder             { b.persona = p; return b }
func (b *Builder) Fix(f Fix) *Builder                     { b.fixes = append(b.fixes, f); return b }
func (b *Builder) Location(sl SymbolicLocation) *Builder {
	b.locations = append(b.locations, sl)
	return b
}

// Build concretizes every symbolic location against doc, asserts at
// least one primary location, and computes the Ignored flag by
// scanning every location's comments for a matching ignore directive.
func (b *Builder) Build(doc *yamlpath.Document) (Finding, error) {
	f := Finding{
		Ident:       b.ident,
		Description: b.description,
		URL:         b.url,
		Severity:    b.severity,
		Confidence:  b.confidence,
		Persona:     b.persona,
		Fixes:       b.fixes,
	}

	hasPrimary := false
	for _, sl := range b.locations {
		loc, err := Concretize(doc, sl)
		if err != nil {
			return Finding{}, err
		}
		if sl.Kind == LocationPrimary {
			hasPrimary = true
		}
		f.Locations = append(f.Locations, loc)
	}
	if !hasPrimary {
		return Finding{}, fmt.Errorf("finding: %s: at least one location must be primary", b.ident)
	}

	f.Ignored = isIgnored(f.Ident, f.Locations)
	return f, nil
}

// isIgnored scans every location's comments for a `# zizmor:
// ignore[...]` directive naming ident.
func isIgnored(ident string, locs []Location) bool {
	for _, loc := range locs {
		for _, c := range loc.Feature.Comments {
			if commentIgnores(c.Text, ident) {
				return true
			}
		}
	}
	return false
}

// commentIgnores parses the ignore-directive grammar:
// `zizmor: ignore[id1, id2, ...]`. No space is permitted before the
// colon (i.e. the literal token is `zizmor:`, not `zizmor :`); any
// amount of whitespace is tolerated between `zizmor:` and `ignore` and
// between `ignore` and the opening `[`, and whitespace and duplicate
// commas inside the bracketed list are tolerated.
func commentIgnores(text string, ident string) bool {
	text = strings.TrimPrefix(strings.TrimSpace(text), "#")
	text = strings.TrimSpace(text)

	const colon = "zizmor:"
	idx := strings.Index(text, colon)
	if idx < 0 {
		return false
	}
	rest := strings.TrimLeft(text[idx+len(colon):], " \t")
	if !strings.HasPrefix(rest, "ignore") {
		return false
	}
	rest = strings.TrimLeft(rest[len("ignore"):], " \t")
	if !strings.HasPrefix(rest, "[") {
		return false
	}
	rest = rest[1:]
	end := strings.Index(rest, "]")
	if end < 0 {
		return false
	}
	for _, id := range strings.Split(rest[:end], ",") {
		if strings.TrimSpace(id) == ident {
			return true
		}
	}
	return false
}
