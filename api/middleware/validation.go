package middleware

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kspt-johs/disir-go/api/apierrors"
)

var validate = validator.New()

// ValidateStruct runs validator/v10 struct-tag validation, grounded on
// the teacher's ValidateStruct.
func ValidateStruct(s any) error { return validate.Struct(s) }

// FieldError describes one failed validator/v10 field rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Hint  string `json:"hint"`
}

// FormatValidationErrors converts a validator.ValidationErrors into the
// field-level shape the API returns in APIError.Details.
func FormatValidationErrors(err error) []FieldError {
	var out []FieldError
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			out = append(out, FieldError{Field: e.Field(), Tag: e.Tag(), Hint: hint(e)})
		}
	}
	return out
}

func hint(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "uuid":
		return "must be a valid UUID"
	default:
		return "validation failed: " + e.Tag()
	}
}

// ContentType rejects write requests whose body is neither
// application/json nor application/yaml (the two formats the handlers
// decode) and caps the request size, grounded on the teacher's
// ValidationMiddleware.
func ContentType(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			if ct := r.Header.Get("Content-Type"); ct != "" && ct != "application/json" && ct != "application/yaml" {
				requestID := GetRequestID(r.Context())
				apierrors.Write(w, apierrors.ValidationError("Content-Type must be application/json or application/yaml").WithRequestID(requestID))
				return
			}
			if r.ContentLength > maxBytes {
				requestID := GetRequestID(r.Context())
				apierrors.Write(w, apierrors.ValidationError("request body too large").WithRequestID(requestID))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
