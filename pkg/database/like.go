package database

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns term into a lowercase LIKE pattern matching it as a
// substring, with LIKE metacharacters escaped.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// LowerLike is the condition pairing with ContainsPattern.
func LowerLike(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}
