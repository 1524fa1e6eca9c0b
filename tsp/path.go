package tsp

import (
	"strconv"
	"strings"
)

// CommandPath is an immutable dotted name identifying a position in the
// remote command namespace, e.g. "smua.measure.nplc" or
// "trigger.blender[2].stimulus[1]". The zero value is the namespace root.
type CommandPath string

// Child returns the path extended with the given member segment.
func (p CommandPath) Child(name string) CommandPath {
	if p == "" {
		return CommandPath(name)
	}
	return p + "." + CommandPath(name)
}

// Index returns the path addressed with a bracketed element index.
func (p CommandPath) Index(i int) CommandPath {
	return p + CommandPath("["+strconv.Itoa(i)+"]")
}

// Base returns the last segment of the path, without any index suffix.
func (p CommandPath) Base() string {
	s := string(p)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '['); i >= 0 {
		s = s[:i]
	}
	return s
}

func (p CommandPath) String() string { return string(p) }

// normalized returns the path with all bracketed indices removed, which is
// the form indexed-attribute tables are keyed on: "trigger.blender[2].stimulus"
// normalizes to "trigger.blender.stimulus".
func (p CommandPath) normalized() string {
	s := string(p)
	if !strings.ContainsRune(s, '[') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
