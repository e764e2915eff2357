// Package yamlserializer is the YAML serializer plugin for disir Mold
// and Config documents (spec.md §6: an external collaborator that
// translates a byte stream into a Context tree using only the core's
// public begin/finalize/set_*/get_* surface). It is grounded in the
// teacher's pkg/configvalidator/parser/yaml_parser.go: strict-mode
// decoding via yaml.v3's KnownFields, plus line:column error
// enrichment with surrounding-line context and a best-effort fix
// suggestion.
package yamlserializer

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kspt-johs/disir-go/pkg/disir"
	"github.com/kspt-johs/disir-go/plugins/internal/wiredoc"
)

// Location pinpoints where in the source document a decode error
// occurred.
type Location struct {
	Line   int
	Column int
	Field  string
}

// Error is a decode error enriched with source location, surrounding
// context and a fix suggestion — the YAML-specific counterpart of
// teacher's validatorpkg.Error.
type Error struct {
	Message    string
	Location   Location
	Context    string
	Suggestion string
	cause      error
}

func (e *Error) Error() string {
	if e.Location.Line > 0 {
		return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Location.Line, e.Location.Column)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Serializer reads and writes disir Mold/Config documents as YAML.
type Serializer struct {
	// Strict rejects documents containing fields the wire schema does
	// not recognize, the same KnownFields(true) the teacher's parser
	// enables for production Alertmanager configs.
	Strict bool
}

// New constructs a Serializer. strict mirrors the teacher's
// NewYAMLParser(strict bool).
func New(strict bool) *Serializer {
	return &Serializer{Strict: strict}
}

// DecodeMold parses data into a finalized Mold.
func (s *Serializer) DecodeMold(data []byte) (*disir.Mold, error) {
	var doc wiredoc.Document
	if err := s.decode(data, &doc); err != nil {
		return nil, err
	}
	return wiredoc.ExportMold(&doc)
}

// DecodeConfig parses data into a finalized Config built against mold.
func (s *Serializer) DecodeConfig(data []byte, mold *disir.Mold) (*disir.Config, error) {
	var doc wiredoc.Document
	if err := s.decode(data, &doc); err != nil {
		return nil, err
	}
	return wiredoc.ExportConfig(&doc, mold)
}

func (s *Serializer) decode(data []byte, doc *wiredoc.Document) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(s.Strict)
	if err := decoder.Decode(doc); err != nil {
		return s.convertError(err, data)
	}
	return nil
}

// EncodeMold renders mold as YAML.
func (s *Serializer) EncodeMold(mold *disir.Mold) ([]byte, error) {
	doc, err := wiredoc.BuildMold(mold)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// EncodeConfig renders cfg as YAML.
func (s *Serializer) EncodeConfig(cfg *disir.Config) ([]byte, error) {
	doc, err := wiredoc.BuildConfig(cfg)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// convertError converts a yaml.v3 decode error into an *Error carrying
// location, context and a suggestion — teacher's convertYAMLError.
func (s *Serializer) convertError(err error, data []byte) error {
	location := extractLocation(err)
	return &Error{
		Message:    formatErrorMessage(err),
		Location:   location,
		Context:    extractContext(data, location.Line, 3),
		Suggestion: generateSuggestion(err),
		cause:      err,
	}
}

var lineColRegex = regexp.MustCompile(`line\s+(\d+)(?::\s*column\s+(\d+))?`)
var fieldRegex = regexp.MustCompile(`(?:field|key)\s+"?([a-zA-Z0-9_]+)"?`)

// extractLocation extracts line and column from a yaml.v3 error, which
// formats as "yaml: line X: column Y: message".
func extractLocation(err error) Location {
	errStr := err.Error()
	var loc Location

	if matches := lineColRegex.FindStringSubmatch(errStr); len(matches) >= 2 {
		if line, convErr := strconv.Atoi(matches[1]); convErr == nil {
			loc.Line = line
		}
		if len(matches) >= 3 && matches[2] != "" {
			if col, convErr := strconv.Atoi(matches[2]); convErr == nil {
				loc.Column = col
			}
		}
	}

	if matches := fieldRegex.FindStringSubmatch(errStr); len(matches) >= 2 {
		loc.Field = matches[1]
	}

	return loc
}

// extractContext renders contextLines lines before/after errorLine,
// prefixing the offending line with an arrow.
func extractContext(data []byte, errorLine, contextLines int) string {
	if errorLine == 0 {
		return ""
	}

	lines := bytes.Split(data, []byte("\n"))

	start := errorLine - contextLines - 1
	if start < 0 {
		start = 0
	}
	end := errorLine + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder
	for i := start; i < end; i++ {
		lineNum := i + 1
		prefix := "  "
		if lineNum == errorLine {
			prefix = "> "
		}
		fmt.Fprintf(&buf, "%s%4d | %s\n", prefix, lineNum, string(lines[i]))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatErrorMessage(err error) string {
	errStr := strings.TrimPrefix(err.Error(), "yaml: ")
	errStr = lineColRegex.ReplaceAllString(errStr, "")
	errStr = strings.TrimPrefix(errStr, ": ")
	if len(errStr) > 0 {
		errStr = strings.ToUpper(string(errStr[0])) + errStr[1:]
	}
	return fmt.Sprintf("YAML syntax error: %s", errStr)
}

func generateSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "unknown field") || strings.Contains(errStr, "not found in type"):
		return "Check field name spelling against the Mold/Config document schema."
	case strings.Contains(errStr, "unmarshal") || strings.Contains(errStr, "cannot unmarshal"):
		return "Check value type. Expected type may differ (e.g. string vs number, list vs mapping)."
	case strings.Contains(errStr, "duplicate"):
		return "Remove duplicate keys. Each key must appear only once at the same level."
	case strings.Contains(errStr, "indent"):
		return "Check indentation. YAML requires consistent indentation (use spaces, not tabs)."
	case strings.Contains(errStr, "mapping"):
		return "Check structure. Expected key-value pairs (key: value)."
	case strings.Contains(errStr, "sequence") || strings.Contains(errStr, "array"):
		return "Check structure. Expected list format (- item)."
	case strings.Contains(errStr, "anchor") || strings.Contains(errStr, "alias"):
		return "Check YAML anchors and aliases syntax (&anchor, *alias)."
	default:
		return "Validate YAML syntax using a YAML validator or linter."
	}
}
