package formula

import (
	"strings"

	"github.com/adrianliechti/ingester/pkg/omml"
)

var (
	equationMarkers = "=≤≥≈≠^√∑∫/"

	dashes = strings.NewReplacer("−", "-", "–", "-", "\u00a0", " ")
)

// Heuristic rewrites plain text that looks like an equation into LaTeX by replacing math symbols
// with their commands. It returns "" for text without an equation marker.
func Heuristic(text string) string {
	text = strings.TrimSpace(text)

	if !strings.ContainsAny(text, equationMarkers) {
		return ""
	}

	text = dashes.Replace(text)
	text = omml.Symbols(text)

	return strings.Join(strings.Fields(text), " ")
}
