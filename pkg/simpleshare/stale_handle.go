package simpleshare

import "regexp"

// staleHandlePattern matches the word "ident", any run of non-word separators
// (spaces, ':', '=', quotes), then a hexadecimal token whose groups may be
// joined by single hyphens. The token must end on a word boundary:
//
//	message := ... "ident" sep* hexgroup ("-" hexgroup)* ...
//	sep     := [^A-Za-z0-9_]
//	hexgroup := [0-9A-Fa-f]+
//
// "identifier" does not count as the literal, and a hex prefix of a longer
// word ("ident deadbeefzz") is rejected.
var staleHandlePattern = regexp.MustCompile(`\bident\b\W*([0-9A-Fa-f]+(?:-[0-9A-Fa-f]+)*)\b`)

// ParseStaleHandle extracts the stale handle embedded in a handle-not-found
// failure message. It returns false when the message has no such token.
func ParseStaleHandle(message string) (HandleID, bool) {
	m := staleHandlePattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return HandleID(m[1]), true
}
