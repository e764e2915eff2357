package disir

import "fmt"

// Status is disir's closed error taxonomy (spec.md §7). Every operation on
// a Context returns a Status rather than a generic error so collaborators
// can switch on the stable enumerated codes named in spec.md §6 without
// string-matching messages.
type Status int

const (
	// StatusOK indicates success.
	StatusOK Status = iota
	// StatusInvalidArgument signals a nil pointer, out-of-range numeric, or
	// an empty value where one is forbidden.
	StatusInvalidArgument
	// StatusNoMemory signals an allocation failure. Go's allocator panics
	// rather than returning this in practice, but it is kept in the
	// taxonomy for parity with the original C library and for plugins that
	// pre-allocate fixed-size buffers.
	StatusNoMemory
	// StatusNotExist signals a queried element is absent.
	StatusNotExist
	// StatusExists signals a duplicate insert.
	StatusExists
	// StatusWrongContext signals an operation applied to the wrong
	// variant, or a variant mismatch against a Mold equivalent.
	StatusWrongContext
	// StatusWrongValueType signals a value-typed operation against an
	// incompatible value type.
	StatusWrongValueType
	// StatusContextInWrongState signals a Constructing/Finalized/Invalid
	// state violation.
	StatusContextInWrongState
	// StatusInvalidContext is a soft verdict: the node exists but failed
	// validation while still attached to a Constructing parent.
	StatusInvalidContext
	// StatusMoldMissing signals a Config node with no Mold equivalent.
	StatusMoldMissing
	// StatusConflictingSemver signals a duplicate introduced version
	// within a Default (or Documentation) queue.
	StatusConflictingSemver
	// StatusRestrictionViolated signals a cardinality or value
	// restriction failure.
	StatusRestrictionViolated
	// StatusElementsInvalid signals this node is itself Ok but at least
	// one descendant is not.
	StatusElementsInvalid
	// StatusNoCanDo signals an operation legal per the API but unsupported
	// for this variant combination (e.g. SetName on a Config root).
	StatusNoCanDo
	// StatusInternalError signals an unreachable state or broken
	// contract.
	StatusInternalError
)

var statusNames = [...]string{
	"OK",
	"INVALID_ARGUMENT",
	"NO_MEMORY",
	"NOT_EXIST",
	"EXISTS",
	"WRONG_CONTEXT",
	"WRONG_VALUE_TYPE",
	"CONTEXT_IN_WRONG_STATE",
	"INVALID_CONTEXT",
	"MOLD_MISSING",
	"CONFLICTING_SEMVER",
	"RESTRICTION_VIOLATED",
	"ELEMENTS_INVALID",
	"NO_CAN_DO",
	"INTERNAL_ERROR",
}

// String renders the stable enumerated name of the status, e.g. "OK" or
// "WRONG_VALUE_TYPE".
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "UNKNOWN_STATUS"
	}
	return statusNames[s]
}

// Error implements the error interface so a Status can be returned (and
// wrapped with fmt.Errorf %w) wherever Go code expects an error.
func (s Status) Error() string {
	return s.String()
}

// verdictRank assigns precedence to statuses that can appear as a
// validation verdict, strongest first, per spec.md §4.8:
//
//	InternalError > RestrictionViolated > WrongValueType > MoldMissing >
//	InvalidContext > ElementsInvalid > Ok
func verdictRank(s Status) int {
	switch s {
	case StatusInternalError:
		return 6
	case StatusRestrictionViolated:
		return 5
	case StatusWrongValueType:
		return 4
	case StatusMoldMissing:
		return 3
	case StatusInvalidContext:
		return 2
	case StatusElementsInvalid:
		return 1
	default:
		return 0
	}
}

// strongerVerdict returns whichever of a, b has higher precedence per
// verdictRank, aggregating a single strongest verdict across a validation
// walk.
func strongerVerdict(a, b Status) Status {
	if verdictRank(b) > verdictRank(a) {
		return b
	}
	return a
}

// wrapf builds an error carrying both a Status and a formatted message,
// used by operations that additionally populate a Context's error slot.
func wrapf(status Status, format string, args ...any) error {
	return fmt.Errorf("%w: %s", status, fmt.Sprintf(format, args...))
}
