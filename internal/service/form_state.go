package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/utils"
)

// RequiredFields is the fixed check order used by ValidateRequired.
var RequiredFields = []string{
	models.FieldUsername,
	models.FieldReceiverName,
	models.FieldHouseNo,
	models.FieldDistrict,
	models.FieldProvince,
	models.FieldSubdistrict,
	models.FieldPhone,
}

// ValidationError reports the first field that blocks a submission.
type ValidationError struct {
	Field  string
	Reason string // "required" or "format"
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

// Message is the user-facing prompt for the failing field.
func (e *ValidationError) Message() string {
	if e.Reason == "format" {
		return "รูปแบบข้อมูลในช่อง " + e.Field + " ไม่ถูกต้อง"
	}
	return "กรุณากรอกข้อมูลในช่อง " + e.Field
}

// NewFormState returns the initial, fully unset state.
func NewFormState() models.FormState {
	return models.FormState{}
}

// Reset returns the initial state. Every field of the form is cleared.
func Reset() models.FormState {
	return NewFormState()
}

// ApplyFieldChange returns state with field set to raw. Province and district
// values are coerced to int ("" is unset). Changing the province clears the
// district, subdistrict and postcode; changing the district clears the
// subdistrict and postcode. Both rules apply even when the value is unchanged.
func ApplyFieldChange(state models.FormState, field, raw string) (models.FormState, error) {
	next := state

	switch field {
	case models.FieldProvince:
		code, err := models.ParseCode(raw)
		if err != nil {
			return state, fmt.Errorf("%s=%q: %w", field, raw, utils.ErrInvalidFieldValue)
		}
		next.Province = code
		next.District = 0
		next.Subdistrict = ""
		next.Postcode = ""
	case models.FieldDistrict:
		code, err := models.ParseCode(raw)
		if err != nil {
			return state, fmt.Errorf("%s=%q: %w", field, raw, utils.ErrInvalidFieldValue)
		}
		next.District = code
		next.Subdistrict = ""
		next.Postcode = ""
	case models.FieldSubdistrict:
		next.Subdistrict = raw
	case models.FieldWebsite:
		next.Website = raw
	case models.FieldUsername:
		next.Username = raw
	case models.FieldReceiverName:
		next.ReceiverName = raw
	case models.FieldHouseNo:
		next.HouseNo = raw
	case models.FieldRoad:
		next.Road = raw
	case models.FieldSoi:
		next.Soi = raw
	case models.FieldVillage:
		next.Village = raw
	case models.FieldPostcode:
		next.Postcode = raw
	case models.FieldPhone:
		next.Phone = raw
	default:
		return state, fmt.Errorf("%q: %w", field, utils.ErrUnknownField)
	}
	return next, nil
}

// TriggersReconcile reports whether a change to field must re-run the
// postcode reaction.
func TriggersReconcile(field string) bool {
	return field == models.FieldProvince || field == models.FieldDistrict || field == models.FieldSubdistrict
}

// Reconcile fills the postcode from the selected subdistrict when the
// (subdistrict, province, district) triple resolves. Otherwise state is
// returned unchanged. Running it twice yields the same state.
func Reconcile(state models.FormState, sel *Selector) models.FormState {
	if state.Subdistrict == "" {
		return state
	}
	if postal, ok := sel.ResolvePostalCode(state.Subdistrict, state.Province, state.District); ok {
		state.Postcode = postal
	}
	return state
}

// PostcodeMismatch reports whether the stored postcode differs from the
// postal code of the selected subdistrict. Unresolved selections never mismatch.
func PostcodeMismatch(state models.FormState, sel *Selector) bool {
	postal, ok := sel.ResolvePostalCode(state.Subdistrict, state.Province, state.District)
	return ok && state.Postcode != postal
}

// ValidateRequired returns the missing required fields in check order.
func ValidateRequired(state models.FormState) []string {
	missing := []string{}
	for _, field := range RequiredFields {
		if isFalsy(state, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

func isFalsy(state models.FormState, field string) bool {
	switch field {
	case models.FieldUsername:
		return state.Username == ""
	case models.FieldReceiverName:
		return state.ReceiverName == ""
	case models.FieldHouseNo:
		return state.HouseNo == ""
	case models.FieldDistrict:
		return state.District == 0
	case models.FieldProvince:
		return state.Province == 0
	case models.FieldSubdistrict:
		return state.Subdistrict == ""
	case models.FieldPhone:
		return state.Phone == ""
	}
	return false
}

type formatRules struct {
	Postcode string `json:"postcode" validate:"required,number,len=5"`
	Phone    string `json:"phone" validate:"required,number,min=9,max=10"`
}

var formatValidator = newFormatValidator()

func newFormatValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateFormat checks the input patterns of the form: a 5-digit postcode
// and a 9 to 10 digit phone number. It returns the failing fields in form order.
func ValidateFormat(state models.FormState) []string {
	invalid := []string{}
	err := formatValidator.Struct(formatRules{Postcode: state.Postcode, Phone: state.Phone})
	if err == nil {
		return invalid
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{models.FieldPostcode}
	}
	for _, fe := range verrs {
		invalid = append(invalid, fe.Field())
	}
	return invalid
}

// Validate returns the first blocking problem: missing required fields
// first, then format problems. It returns nil when the form can be sent.
func Validate(state models.FormState) *ValidationError {
	if missing := ValidateRequired(state); len(missing) > 0 {
		return &ValidationError{Field: missing[0], Reason: "required"}
	}
	if invalid := ValidateFormat(state); len(invalid) > 0 {
		return &ValidationError{Field: invalid[0], Reason: "format"}
	}
	return nil
}
