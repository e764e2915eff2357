// Package jsonserializer is the JSON serializer plugin for disir Mold
// and Config documents (spec.md §6). It is grounded in the teacher's
// pkg/configvalidator/parser/json_parser.go: strict-mode decoding via
// encoding/json's DisallowUnknownFields, plus offset-to-line/column
// error enrichment with surrounding-line context and a fix suggestion.
package jsonserializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

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
// context and a fix suggestion.
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

// Serializer reads and writes disir Mold/Config documents as JSON.
type Serializer struct {
	// Strict rejects documents containing fields the wire schema does
	// not recognize (encoding/json's DisallowUnknownFields), mirroring
	// the teacher's NewJSONParser(strict bool).
	Strict bool
}

// New constructs a Serializer.
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
	decoder := json.NewDecoder(bytes.NewReader(data))
	if s.Strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(doc); err != nil {
		return s.convertError(err, data)
	}
	return nil
}

// EncodeMold renders mold as JSON.
func (s *Serializer) EncodeMold(mold *disir.Mold) ([]byte, error) {
	doc, err := wiredoc.BuildMold(mold)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// EncodeConfig renders cfg as JSON.
func (s *Serializer) EncodeConfig(cfg *disir.Config) ([]byte, error) {
	doc, err := wiredoc.BuildConfig(cfg)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// convertError converts an encoding/json decode error into an *Error
// carrying location, context and a suggestion — teacher's
// convertJSONError.
func (s *Serializer) convertError(err error, data []byte) error {
	location := extractLocation(err, data)
	return &Error{
		Message:    formatErrorMessage(err),
		Location:   location,
		Context:    extractContext(data, location.Line, 3),
		Suggestion: generateSuggestion(err),
		cause:      err,
	}
}

var jsonLineRegex = regexp.MustCompile(`line\s+(\d+)`)
var jsonFieldRegex = regexp.MustCompile(`json:\s*cannot unmarshal[^"]*into Go\s+(?:struct\s+field\s+)?([a-zA-Z0-9_.]+)`)

// extractLocation extracts location from a JSON decode error, converting
// the byte offset encoding/json reports into a line:column pair.
func extractLocation(err error, data []byte) Location {
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		line, col := offsetToLineColumn(data, int(syntaxErr.Offset))
		return Location{Line: line, Column: col}
	}
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		line, col := offsetToLineColumn(data, int(typeErr.Offset))
		return Location{Line: line, Column: col, Field: typeErr.Field}
	}

	errStr := err.Error()
	var loc Location
	if matches := jsonLineRegex.FindStringSubmatch(errStr); len(matches) >= 2 {
		if line, convErr := strconv.Atoi(matches[1]); convErr == nil {
			loc.Line = line
		}
	}
	if matches := jsonFieldRegex.FindStringSubmatch(errStr); len(matches) >= 2 {
		loc.Field = matches[1]
	}
	return loc
}

// offsetToLineColumn converts a byte offset into a 1-based line:column
// position.
func offsetToLineColumn(data []byte, offset int) (line, column int) {
	if offset < 0 || offset > len(data) {
		return 1, 1
	}
	line, column = 1, 1
	for i := 0; i < offset && i < len(data); i++ {
		if data[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

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
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		return fmt.Sprintf("JSON syntax error: %s", syntaxErr.Error())
	}
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		return fmt.Sprintf("JSON type error: cannot unmarshal %s into field %s (expected %s)",
			typeErr.Value, typeErr.Field, typeErr.Type)
	}
	return fmt.Sprintf("JSON parse error: %s", err.Error())
}

func generateSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "cannot unmarshal"):
		switch {
		case strings.Contains(errStr, "string") && strings.Contains(errStr, "number"):
			return "Expected a number but got a string. Remove quotes around numeric values."
		case strings.Contains(errStr, "array"):
			return "Expected an array but got a different type. Use square brackets [...]."
		case strings.Contains(errStr, "object"):
			return "Expected an object but got a different type. Use curly braces {...}."
		default:
			return "Check value type. Expected type may differ (e.g. string vs number)."
		}
	case strings.Contains(errStr, "unknown field"):
		return "Unknown field detected. Check field name spelling against the Mold/Config document schema."
	case strings.Contains(errStr, "unexpected"):
		if strings.Contains(errStr, "eof") {
			return "Unexpected end of file. Check for missing closing brackets or quotes."
		}
		return "Unexpected character. Check for missing commas, brackets, or quotes."
	case strings.Contains(errStr, "invalid character"):
		return "Invalid character in JSON. Check for unescaped quotes or control characters."
	default:
		return "Validate JSON syntax using a JSON validator or linter."
	}
}
