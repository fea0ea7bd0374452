package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeItem returns the lookup key for an item name: NFC form, trimmed
// and lowercased. Catalog keys and requested names go through the same path.
func NormalizeItem(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}
