package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike neutralizes LIKE wildcards in user-supplied search terms so a
// query for "100%" matches the literal text.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
