package disir

// elementStorage is an insertion-ordered multimap from name to an ordered
// list of child contexts (spec.md §4.2). Global iteration yields children
// in chronological insertion order regardless of name, matching the
// original C implementation's parallel map+list structure
// (lib/element_storage.c: es_map for name lookup, es_list for chronology).
type elementStorage struct {
	order []*Context          // all children, insertion order, across all names
	byName map[string][]*Context
}

func newElementStorage() *elementStorage {
	return &elementStorage{byName: make(map[string][]*Context)}
}

// add attaches ctx under name as the parent's single structural,
// owning reference — the same reference count unit ctx was created with
// in newContext, now reinterpreted as "held by this storage slot" rather
// than "held by the constructing caller". It does not increment ctx's
// refcount: doing so would double-count the one strong reference spec.md
// §3 says a parent holds on its child, since that reference already
// exists from the child's own begin(). A duplicate (name, ctx) pair is
// StatusExists.
func (s *elementStorage) add(name string, ctx *Context) error {
	for _, existing := range s.byName[name] {
		if existing == ctx {
			return wrapf(StatusExists, "context already stored under name %q", name)
		}
	}
	s.byName[name] = append(s.byName[name], ctx)
	s.order = append(s.order, ctx)
	return nil
}

// remove detaches ctx from storage, releasing the structural reference
// established by add. Symmetric with add: no refcount change here, since
// the caller of remove decides separately whether to also release the
// reference (see Context.destroy's recursive teardown).
func (s *elementStorage) remove(name string, ctx *Context) error {
	list := s.byName[name]
	idx := -1
	for i, existing := range list {
		if existing == ctx {
			idx = i
			break
		}
	}
	if idx == -1 {
		return wrapf(StatusNotExist, "context not found under name %q", name)
	}
	s.byName[name] = append(list[:idx], list[idx+1:]...)
	if len(s.byName[name]) == 0 {
		delete(s.byName, name)
	}

	for i, existing := range s.order {
		if existing == ctx {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

// get returns a refcount-incremented snapshot of children named name, in
// insertion order.
func (s *elementStorage) get(name string) []*Context {
	list := s.byName[name]
	out := make([]*Context, len(list))
	for i, ctx := range list {
		ctx.incref()
		out[i] = ctx
	}
	return out
}

// getAll returns a refcount-incremented snapshot of every child, in global
// insertion order.
func (s *elementStorage) getAll() []*Context {
	out := make([]*Context, len(s.order))
	for i, ctx := range s.order {
		ctx.incref()
		out[i] = ctx
	}
	return out
}

// first is a cheap peek at the first child named name. It does not
// increment refcount — internal use only (mold-equivalent resolution,
// cardinality counting), never exposed across the public API.
func (s *elementStorage) first(name string) (*Context, bool) {
	list := s.byName[name]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// at returns the index-th (0-based) child named name, without
// incrementing refcount. Callers that hand this out to a caller must
// incref themselves (see findElement in query.go).
func (s *elementStorage) at(name string, index int) (*Context, bool) {
	list := s.byName[name]
	if index < 0 || index >= len(list) {
		return nil, false
	}
	return list[index], true
}

// count returns the number of children stored under name.
func (s *elementStorage) count(name string) int {
	return len(s.byName[name])
}

// size returns the number of distinct names stored, not the number of
// values (spec.md §4.2).
func (s *elementStorage) size() int {
	return len(s.byName)
}

// destroyAll destroys every stored child, used when a parent is torn down.
func (s *elementStorage) destroyAll() {
	// Copy first: destroy mutates s.order via remove-on-zero-refcount paths
	// invoked transitively through Context.destroy.
	children := append([]*Context(nil), s.order...)
	for _, ctx := range children {
		_ = ctx.destroy()
	}
}
