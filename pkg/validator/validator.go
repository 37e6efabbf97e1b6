package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TimestampFormats lists the accepted shapes for error messages
const TimestampFormats = "YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]"

// InvalidTimestampMessage is reported for a field that does not parse as a timestamp
const InvalidTimestampMessage = "Datetime has wrong format. Use one of these formats instead: " + TimestampFormats + "."

// ParseTimestamp parses an API timestamp and returns it in UTC
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

// Register makes errors from v report json field names
func Register(v *validator.Validate) error {
	if v == nil {
		return errors.New("nil validator")
	}
	v.RegisterTagNameFunc(jsonFieldName)
	return nil
}

// New returns a validator that reports json field names
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

var messages = map[string]string{
	"required": "This field is required.",
}

// FieldErrors turns binding and validation failures into per-field messages.
// It returns nil when err carries no field information.
func FieldErrors(err error) map[string][]string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string][]string, len(validationErrs))
		for _, fe := range validationErrs {
			msg, ok := messages[fe.Tag()]
			if !ok {
				msg = fmt.Sprintf("Failed on the %q rule.", fe.Tag())
			}
			fields[fe.Field()] = append(fields[fe.Field()], msg)
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string][]string{
			typeErr.Field: {fmt.Sprintf("Expected %s, got %s.", typeErr.Type.String(), typeErr.Value)},
		}
	}
	return nil
}
