package disir

// findElement returns the first child of c named name, refcount
// incremented for the caller (spec.md §4.4 FindElement). StatusNotExist
// if absent.
func findElement(c *Context, name string) (*Context, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	if c.elements == nil {
		return nil, wrapf(StatusWrongContext, "%s has no children", c.variant)
	}
	child, ok := c.elements.first(name)
	if !ok {
		return nil, wrapf(StatusNotExist, "no child named %q", name)
	}
	child.incref()
	return child, nil
}

// getElements returns every child of c named name, refcount incremented
// for the caller (spec.md §4.4 GetElements).
func getElements(c *Context, name string) ([]*Context, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	if c.elements == nil {
		return nil, wrapf(StatusWrongContext, "%s has no children", c.variant)
	}
	return c.elements.get(name), nil
}

// getAllElements returns every child of c, in insertion order, refcount
// incremented for the caller.
func getAllElements(c *Context) ([]*Context, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	if c.elements == nil {
		return nil, wrapf(StatusWrongContext, "%s has no children", c.variant)
	}
	return c.elements.getAll(), nil
}

// indexElement returns the index-th (0-based) child of c named name,
// refcount incremented for the caller.
func indexElement(c *Context, name string, index int) (*Context, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	if c.elements == nil {
		return nil, wrapf(StatusWrongContext, "%s has no children", c.variant)
	}
	child, ok := c.elements.at(name, index)
	if !ok {
		return nil, wrapf(StatusNotExist, "no child named %q at index %d", name, index)
	}
	child.incref()
	return child, nil
}

// findMoldEquivalent resolves the mold-side Context matching a
// config-side node's position in the tree, by retracing the chain of
// names from the Config root down to c against the Mold root attached
// via BeginConfig/AttachMold. StatusMoldMissing if no Mold is attached,
// or if no node at the same path exists in it (spec.md §4.7 — the core
// mechanism validator.go and Context.MoldEquivalent lean on for
// cross-tree comparison).
func findMoldEquivalent(c *Context) (*Context, error) {
	if c.isMoldSide() {
		return nil, wrapf(StatusWrongContext, "context is already mold-side")
	}

	configRoot := c.root
	if configRoot.moldRoot == nil {
		return nil, wrapf(StatusMoldMissing, "config has no mold attached")
	}
	if c == configRoot {
		return configRoot.moldRoot, nil
	}

	var path []string
	for cur := c; cur.parent != nil; cur = cur.parent {
		path = append(path, cur.name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	node := configRoot.moldRoot
	for _, name := range path {
		next, ok := node.elements.first(name)
		if !ok {
			return nil, wrapf(StatusMoldMissing, "no mold equivalent for %q", name)
		}
		node = next
	}
	return node, nil
}

// resolveRootName returns a debug-friendly label for the root of c's
// tree: the root Variant together with the root's own version, e.g.
// "MOLD v1.2.0" or "CONFIG v1.0.0" (supplemented from original_source's
// dx_resolve_root_name, used there for log/error-message context rather
// than as part of the validated data model).
func resolveRootName(c *Context) string {
	root := c.root
	return root.variant.String() + " v" + root.version.String()
}
