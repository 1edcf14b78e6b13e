package auth

import "strings"

// Names is a display name split into parts.
type Names struct {
	First  string
	Middle string
	Last   string
}

// SplitName splits on single spaces: the first token is the first name,
// the last token (when there are at least two) the last name, and anything
// in between joins into the middle name.
func SplitName(name string) Names {
	parts := strings.Split(name, " ")

	var n Names
	n.First = parts[0]
	if len(parts) > 1 {
		n.Last = parts[len(parts)-1]
	}
	if len(parts) > 2 {
		n.Middle = strings.Join(parts[1:len(parts)-1], " ")
	}
	return n
}
