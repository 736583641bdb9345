package db

import "strings"

// LikePattern wraps s for a substring ILIKE, escaping the wildcards.
func LikePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
