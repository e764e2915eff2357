package appconfig

import "encoding/json"

// Sanitizer redacts secrets from a Config before it is logged, adapted
// from the teacher's ConfigSanitizer (internal/config/sanitizer.go) and
// narrowed to the fields disir's Config actually carries.
type Sanitizer interface {
	Sanitize(cfg *Config) *Config
}

// DefaultSanitizer replaces every secret field with a fixed placeholder.
type DefaultSanitizer struct {
	redactionValue string
}

// NewDefaultSanitizer returns a Sanitizer using "***REDACTED***".
func NewDefaultSanitizer() Sanitizer {
	return &DefaultSanitizer{redactionValue: "***REDACTED***"}
}

// NewSanitizer returns a Sanitizer using a custom placeholder.
func NewSanitizer(redactionValue string) Sanitizer {
	return &DefaultSanitizer{redactionValue: redactionValue}
}

// Sanitize returns a deep copy of cfg with Registry.Password replaced by
// the redaction placeholder, and Resolver.RedisPassword replaced too when
// it is non-empty, safe to pass to a structured logger (disirlog) without
// leaking credentials.
func (s *DefaultSanitizer) Sanitize(cfg *Config) *Config {
	sanitized := s.deepCopy(cfg)
	sanitized.Registry.Password = s.redactionValue
	if sanitized.Resolver.RedisPassword != "" {
		sanitized.Resolver.RedisPassword = s.redactionValue
	}
	return sanitized
}

func (s *DefaultSanitizer) deepCopy(cfg *Config) *Config {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return cfg
	}
	var copied Config
	if err := json.Unmarshal(raw, &copied); err != nil {
		return cfg
	}
	return &copied
}
