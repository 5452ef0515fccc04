package punch

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PunchIn is the payload of POST /punch/punch-in. Photo is the local path
// of the captured image; it travels as a multipart file part.
type PunchIn struct {
	Location     string `json:"punchInLocation" validate:"required,latlng"`
	Time         string `json:"punchInTime" validate:"required"`
	CustomerName string `json:"customerName" validate:"required"`
	Photo        string `json:"photo" validate:"required"`
}

// PunchOut is the payload of POST /punch/punch-out.
type PunchOut struct {
	ID       string `json:"id" validate:"required"`
	Time     string `json:"punchOutTime" validate:"required"`
	Location string `json:"punchOutLocation" validate:"required,latlng"`
	Date     string `json:"punchOutDate,omitempty"`
}

// FieldError is one failed field, named by its JSON key.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed local validation. A
// request that fails validation is never sent.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var tagMessages = map[string]string{
	"required": "is required",
	"latlng":   `must be "lat,lng"`,
	"email":    "must be an email address",
	"nefield":  "must differ from the current value",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("latlng", func(fl validator.FieldLevel) bool {
		_, _, err := ParseLocation(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks a request struct and converts validator output into a
// *ValidationError.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
