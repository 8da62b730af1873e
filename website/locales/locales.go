// Package locales embeds the website translation bundles laid out as
// <language>/<namespace>.json.
package locales

import "embed"

// FS holds every bundle.
//
//go:embed */*.json
var FS embed.FS

// Namespaces are the bundle files each language may provide.
var Namespaces = []string{"common", "assessment", "questionnaires"}
