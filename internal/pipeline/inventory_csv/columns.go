package inventory_csv

import (
	"strings"
	"unicode/utf8"
)

// ColumnMap maps a normalized header name to the cell value of one data row.
type ColumnMap map[string]string

// NormalizeKey lowercases name and drops everything that is not an ASCII
// letter or digit, so "Product Name", "product_name" and "productName" all
// become "productname".
func NormalizeKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, name)
}

// BuildColumnMap pairs headers with row cells. Only the overlapping prefix is
// mapped when the lengths differ. When two headers normalize to the same key
// the leftmost column wins.
func BuildColumnMap(headers, row []string) ColumnMap {
	n := len(headers)
	if len(row) < n {
		n = len(row)
	}

	m := make(ColumnMap, n)
	for i := 0; i < n; i++ {
		key := NormalizeKey(headers[i])
		if key == "" {
			continue
		}
		if _, exists := m[key]; exists {
			continue
		}
		m[key] = strings.TrimSpace(row[i])
	}
	return m
}

// First returns the value under the first key, in priority order, that is
// present with a non-empty value.
func (m ColumnMap) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[NormalizeKey(k)]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// StringOr is First with a default.
func (m ColumnMap) StringOr(fallback string, keys ...string) string {
	if v, ok := m.First(keys...); ok {
		return v
	}
	return fallback
}

// Has reports whether any of keys is a mapped column, empty or not.
func (m ColumnMap) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[NormalizeKey(k)]; ok {
			return true
		}
	}
	return false
}

// synonyms normalizes a priority list once and drops duplicates that
// collapse to the same key.
func synonyms(names ...string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		k := NormalizeKey(n)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func stripBOM(s string) string {
	if r, size := utf8.DecodeRuneInString(s); r == '\uFEFF' {
		return s[size:]
	}
	return s
}
