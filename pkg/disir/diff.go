package disir

import "strings"

// DiffKind tags the kind of change a DiffEntry describes.
type DiffKind int

const (
	DiffAdded DiffKind = iota
	DiffRemoved
	DiffChanged
)

func (k DiffKind) String() string {
	switch k {
	case DiffAdded:
		return "added"
	case DiffRemoved:
		return "removed"
	case DiffChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// DiffEntry is one structural difference found between two Config trees
// (supplemented from original_source per SPEC_FULL.md Section C — the
// distilled spec.md describes resolution and validation but not a
// structured diff report; the original C tooling renders one for
// operators comparing a live Config against a previous revision).
type DiffEntry struct {
	Path string
	Kind DiffKind
	Old  string
	New  string
}

// String renders a single entry the way original_source's diff tooling
// does: "~ <path>: <old> -> <new>" for changes, "+ <path>: <new>" for
// additions, "- <path>: <old>" for removals.
func (e DiffEntry) String() string {
	switch e.Kind {
	case DiffAdded:
		return "+ " + e.Path + ": " + e.New
	case DiffRemoved:
		return "- " + e.Path + ": " + e.Old
	default:
		return "~ " + e.Path + ": " + e.Old + " -> " + e.New
	}
}

// Diff compares two Config trees built against the same Mold and returns
// every structural difference: Keyval value changes, and Section/Keyval
// children present in one but not the other. Comparison is purely
// structural — it does not consult either Config's Mold equivalent, so
// it is safe to call even when one side's Mold has since changed.
func Diff(from, to *Config) []DiffEntry {
	return diffNode(from.ctx, to.ctx, resolveRootName(from.ctx))
}

// DiffReport renders entries as a multi-line report, one entry per line,
// in the order Diff produced them.
func DiffReport(entries []DiffEntry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

func diffNode(from, to *Context, path string) []DiffEntry {
	var entries []DiffEntry

	if from.variant == VariantKeyval || to.variant == VariantKeyval {
		if !from.value.equal(to.value) {
			entries = append(entries, DiffEntry{
				Path: path, Kind: DiffChanged, Old: from.value.Format(), New: to.value.Format(),
			})
		}
		return entries
	}

	if from.elements == nil || to.elements == nil {
		return entries
	}

	visited := make(map[string]bool)
	for _, child := range from.elements.order {
		if visited[child.name] {
			continue
		}
		visited[child.name] = true
		childPath := path + "." + child.name

		toChildren := to.elements.byName[child.name]
		fromChildren := from.elements.byName[child.name]

		n := len(fromChildren)
		if len(toChildren) < n {
			n = len(toChildren)
		}
		for i := 0; i < n; i++ {
			entries = append(entries, diffNode(fromChildren[i], toChildren[i], childPath)...)
		}
		for i := n; i < len(fromChildren); i++ {
			entries = append(entries, DiffEntry{Path: childPath, Kind: DiffRemoved, Old: describeNode(fromChildren[i])})
		}
		for i := n; i < len(toChildren); i++ {
			entries = append(entries, DiffEntry{Path: childPath, Kind: DiffAdded, New: describeNode(toChildren[i])})
		}
	}

	for _, child := range to.elements.order {
		if visited[child.name] {
			continue
		}
		visited[child.name] = true
		childPath := path + "." + child.name
		for _, added := range to.elements.byName[child.name] {
			entries = append(entries, DiffEntry{Path: childPath, Kind: DiffAdded, New: describeNode(added)})
		}
	}

	return entries
}

func describeNode(c *Context) string {
	if c.variant == VariantKeyval {
		return c.value.Format()
	}
	return c.variant.String()
}
