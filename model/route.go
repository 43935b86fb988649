// SPDX-License-Identifier: MIT

package model

import "github.com/esacteksab/gh-audit/yamlpath"

// Route is an alias for yamlpath.Route: every model type that carries
// a location keeps the Route it was built from, so audits can hand it
// straight to finding.NewSymbolicLocation without re-deriving it.
type Route = yamlpath.Route
