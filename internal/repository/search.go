package repository

import "strings"

// likeEscaper escapes the LIKE wildcards so user input matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q anywhere in a column.
// Use it with "ESCAPE '\'" in the query.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
