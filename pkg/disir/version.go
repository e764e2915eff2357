package disir

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is disir's (major, minor, patch) triple (spec.md §4.1). Order is
// lexicographic across the three fields. The zero Version, (0,0,0), is
// "unspecified"; a newly begun Mold initializes its own version to (1,0,0)
// once finalized (see Mold.Version).
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// UnspecifiedVersion is the (0,0,0) sentinel.
var UnspecifiedVersion = Version{}

// ParseVersion parses exactly three dot-separated unsigned decimal
// components ("M.m.p"). Any other shape — too few/many components,
// non-numeric components, negative numbers — is StatusInvalidArgument.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, wrapf(StatusInvalidArgument,
			"version %q must have exactly three dot-separated components", s)
	}

	var out [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Version{}, wrapf(StatusInvalidArgument,
				"version %q: component %q is not an unsigned integer", s, p)
		}
		out[i] = uint32(n)
	}

	return Version{Major: out[0], Minor: out[1], Patch: out[2]}, nil
}

// String formats the canonical "M.m.p" representation.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns <0 if v < other, 0 if equal, >0 if v > other, comparing
// Major, then Minor, then Patch.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpUint32(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpUint32(v.Minor, other.Minor)
	}
	return cmpUint32(v.Patch, other.Patch)
}

// Less reports whether v sorts strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// LessOrEqual reports whether v sorts at or before other.
func (v Version) LessOrEqual(other Version) bool {
	return v.Compare(other) <= 0
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
