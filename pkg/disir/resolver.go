package disir

// effectiveRestrictions narrows a mold node's full restriction queue
// down to the one restriction that applies at target, per restriction
// kind (spec.md §4.5, §4.6). A node may accumulate several restrictions
// of the same kind across Mold versions (e.g. the cardinality bound
// tightened in a later release); only the entry with the greatest
// introduced version <= target that is not deprecated at target
// governs. Unlike Default and Documentation resolution, there is no
// fallback to the earliest entry.
func effectiveRestrictions(all []*Context, target Version) []*Context {
	byKind := make(map[RestrictionType][]*Context)
	for _, r := range all {
		byKind[r.restrictionType] = append(byKind[r.restrictionType], r)
	}

	out := make([]*Context, 0, len(byKind))
	for _, group := range byKind {
		sorted := append([]*Context(nil), group...)
		sortByIntroduced(sorted)

		// Unlike Default/Documentation resolution, a Restriction that
		// hasn't been introduced yet or has already expired simply does
		// not apply at target — there is no fallback-to-earliest rule,
		// since an expired restriction being silently reinstated would
		// be surprising (a later Mold version deliberately lifting a
		// restriction would see it reappear at validation time).
		var best *Context
		for _, r := range sorted {
			if !r.introduced.LessOrEqual(target) {
				continue
			}
			if r.hasDeprecated && !target.Less(r.deprecated) {
				continue
			}
			best = r
		}
		if best != nil {
			out = append(out, best)
		}
	}
	return out
}

// effectiveDefault resolves the single Default entry that applies to a
// Config at the given target version (spec.md §4.6 GetDefault).
func effectiveDefault(moldKeyval *Context, target Version) (*Context, bool) {
	return resolveDefault(moldKeyval.defaults, target)
}

// effectiveDocumentation resolves the single Documentation entry that
// applies at the given target version.
func effectiveDocumentation(node *Context, target Version) (*Context, bool) {
	return resolveDocumentation(node.documentation, target)
}
