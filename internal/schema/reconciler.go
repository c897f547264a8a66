// Package schema maps non-standard header rows onto canonical dataset fields.
package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"lcaload/internal/csvtext"
	"lcaload/internal/domain"
)

// NormalizeHeader lower-cases a raw header name and collapses whitespace runs
// to a single underscore. Compatibility forms (non-breaking spaces, full-width
// letters) are folded first.
func NormalizeHeader(raw string) string {
	s := norm.NFKC.String(csvtext.StripBOM(raw))
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// variantIndex inverts a synonym table. A variant listed under two canonical
// fields belongs to the first one.
func variantIndex(table domain.SynonymTable) map[string]string {
	idx := make(map[string]string)
	for _, e := range table.Entries {
		if _, ok := idx[e.Canonical]; !ok {
			idx[e.Canonical] = e.Canonical
		}
		for _, v := range e.Variants {
			key := NormalizeHeader(v)
			if _, ok := idx[key]; !ok {
				idx[key] = e.Canonical
			}
		}
	}
	return idx
}

// Reconcile builds a ColumnMapping from a header row. Each canonical field is
// bound to the first header column matching any of its variants; later
// duplicates are ignored and fields with no matching column are absent.
func Reconcile(table domain.SynonymTable, header []string) *domain.ColumnMapping {
	idx := variantIndex(table)
	mapping := &domain.ColumnMapping{
		SynonymVersion: table.Version,
		Fields:         make(map[string]int),
		HeaderWidth:    len(header),
	}
	for i, raw := range header {
		canonical, ok := idx[NormalizeHeader(raw)]
		if !ok {
			continue
		}
		if _, taken := mapping.Fields[canonical]; taken {
			continue
		}
		mapping.Fields[canonical] = i
	}
	return mapping
}

// Current reports whether a cached mapping was built from this table version.
func Current(table domain.SynonymTable, m *domain.ColumnMapping) bool {
	return m != nil && m.SynonymVersion == table.Version && m.Fields != nil
}
