package disir

import "fmt"

// stateNames gives each state bit a short debug label.
func (s state) String() string {
	var parts []string
	if s.has(stateConstructing) {
		parts = append(parts, "CONSTRUCTING")
	}
	if s.has(stateFinalized) {
		parts = append(parts, "FINALIZED")
	}
	if s.has(stateDestroyed) {
		parts = append(parts, "DESTROYED")
	}
	if s.has(stateInvalid) {
		parts = append(parts, "INVALID")
	}
	if len(parts) == 0 {
		return "UNKNOWN_STATE"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "|" + p
	}
	return out
}

// String renders a short debug form of a Context — variant, name (if
// any) and lifecycle state — used by log lines and test failure
// messages, never by the validated data model itself.
func (c *Context) String() string {
	if c == nil {
		return "<nil context>"
	}
	name := c.name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%s(%s)[%s]", c.variant, name, c.st)
}

// String renders a Mold for debug logging.
func (m *Mold) String() string {
	if m == nil || m.ctx == nil {
		return "<nil mold>"
	}
	return fmt.Sprintf("Mold(v%s)[%s]", m.ctx.version, m.ctx.st)
}

// String renders a Config for debug logging.
func (cfg *Config) String() string {
	if cfg == nil || cfg.ctx == nil {
		return "<nil config>"
	}
	return fmt.Sprintf("Config(v%s)[%s]", cfg.ctx.version, cfg.ctx.st)
}
