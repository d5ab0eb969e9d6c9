package inspect

import (
	"strconv"

	"github.com/dlclark/regexp2"
)

// describePattern matches the `tag-N-gHASH` form git describe produces when
// HEAD is not exactly on a tag. The tag group is greedy so tags that contain
// dashes keep them.
var describePattern = regexp2.MustCompile(`^(.+)-(\d+)-g([0-9a-f]+)$`, regexp2.RE2)

// Describe is a parsed describe string.
type Describe struct {
	Tag      string
	Distance int
	Hash     string
}

// Exact reports whether HEAD is the tagged commit itself.
func (d Describe) Exact() bool {
	return d.Distance == 0
}

// ParseDescribe splits a describe string into its parts. A string without the
// distance suffix is an exact tag. ok is false for an empty string.
func ParseDescribe(s string) (Describe, bool) {
	if s == "" {
		return Describe{}, false
	}
	match, err := describePattern.FindStringMatch(s)
	if err != nil || match == nil {
		return Describe{Tag: s}, true
	}
	distance, err := strconv.Atoi(match.GroupByNumber(2).String())
	if err != nil {
		return Describe{Tag: s}, true
	}
	return Describe{
		Tag:      match.GroupByNumber(1).String(),
		Distance: distance,
		Hash:     match.GroupByNumber(3).String(),
	}, true
}
