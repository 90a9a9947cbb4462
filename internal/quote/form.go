// Package quote holds the quote request form: field values, unit toggles for
// the sign dimensions, validation, the draft payload and its summary.
package quote

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Form field names, matching the keys of the saved form_data object.
const (
	FieldWidth        = "width"
	FieldHeight       = "height"
	FieldMaterial     = "materialPreference"
	FieldIllumination = "illumination"
	FieldSurface      = "installationSurface"
	FieldLocation     = "cityState"
	FieldBudget       = "budget"
	FieldPlacement    = "placement"
	FieldDeadline     = "deadline"
	FieldNotes        = "additionalNotes"
)

// FieldSpec describes one input of the form.
type FieldSpec struct {
	Name        string
	Label       string
	Placeholder string
	Dimension   bool
}

// Fields lists the form inputs in display order.
var Fields = []FieldSpec{
	{Name: FieldWidth, Label: "Width", Placeholder: "e.g. 48", Dimension: true},
	{Name: FieldHeight, Label: "Height", Placeholder: "e.g. 24", Dimension: true},
	{Name: FieldMaterial, Label: "Material", Placeholder: "aluminum, acrylic, vinyl..."},
	{Name: FieldIllumination, Label: "Illumination", Placeholder: "front-lit, back-lit, none"},
	{Name: FieldSurface, Label: "Installation Surface", Placeholder: "brick, glass, drywall..."},
	{Name: FieldLocation, Label: "Location", Placeholder: "City, State"},
	{Name: FieldBudget, Label: "Budget", Placeholder: "e.g. $1,000 - $2,500"},
	{Name: FieldPlacement, Label: "Placement", Placeholder: "indoor, outdoor, storefront"},
	{Name: FieldDeadline, Label: "Deadline", Placeholder: "e.g. end of next month"},
	{Name: FieldNotes, Label: "Additional Notes"},
}

// IsField reports whether name is a form input.
func IsField(name string) bool {
	return slices.ContainsFunc(Fields, func(f FieldSpec) bool { return f.Name == name })
}

// Form errors. Use errors.Is to check.
var (
	ErrUnknownField         = errors.New("unknown form field")
	ErrNotDimension         = errors.New("field has no unit")
	ErrDimensionsIncomplete = errors.New("width and height must both be set or both be empty")
	ErrInvalidDimensions    = errors.New("dimensions must be positive numbers")
)

// UserMessage returns the text shown to the customer for a validation error,
// or the error text for anything else.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrDimensionsIncomplete):
		return "Please enter both width and height dimensions, or leave both empty."
	case errors.Is(err, ErrInvalidDimensions):
		return "Please enter valid positive numbers for dimensions."
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}

// Form is the mutable state of the quote form. It is usable as soon as
// NewForm returns. All methods are safe for concurrent use; a draft restored
// while the user edits simply overwrites whatever it touches.
type Form struct {
	mu     sync.Mutex
	values map[string]string
	units  map[string]Unit
}

// NewForm returns an empty form with both dimensions in the default unit.
func NewForm() *Form {
	f := &Form{}
	f.reset()
	return f
}

// Set stores a field value.
func (f *Form) Set(field, value string) error {
	if !IsField(field) {
		return fmt.Errorf("%s: %w", field, ErrUnknownField)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[field] = value
	return nil
}

// Value returns a field value, empty when unset or unknown.
func (f *Form) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// Values returns a copy of every field value, including empty ones.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(Fields))
	for _, spec := range Fields {
		out[spec.Name] = f.values[spec.Name]
	}
	return out
}

// SetUnit selects the unit of a dimension field.
func (f *Form) SetUnit(field string, unit Unit) error {
	if !isDimension(field) {
		return fmt.Errorf("%s: %w", field, ErrNotDimension)
	}
	if !unit.Valid() {
		return fmt.Errorf("%q: %w", unit, ErrUnknownUnit)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.units[field] = unit
	return nil
}

// Unit returns the unit of a dimension field, DefaultUnit for anything else.
func (f *Form) Unit(field string) Unit {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.units[field]; ok {
		return u
	}
	return DefaultUnit
}

// CycleUnit advances a dimension to the next unit and returns it.
func (f *Form) CycleUnit(field string) (Unit, error) {
	next := f.Unit(field).Next()
	if err := f.SetUnit(field, next); err != nil {
		return "", err
	}
	return next, nil
}

// Toggles returns the unit buttons of a dimension field. Exactly one is
// active, and it is the field's recorded unit.
func (f *Form) Toggles(field string) []Toggle {
	current := f.Unit(field)
	toggles := make([]Toggle, len(Units))
	for i, u := range Units {
		toggles[i] = Toggle{Unit: u, Active: u == current}
	}
	return toggles
}

// Restore fills the form from a saved form_data object and returns how many
// fields were filled. Keys that are not form inputs are ignored. Units are
// taken from widthUnit/heightUnit; unknown or missing units fall back to the
// default.
func (f *Form) Restore(data map[string]any) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	filled := 0
	for key, raw := range data {
		if !IsField(key) || raw == nil {
			continue
		}
		f.values[key] = formatValue(raw)
		filled++
	}

	f.units[FieldWidth] = restoredUnit(data["widthUnit"])
	f.units[FieldHeight] = restoredUnit(data["heightUnit"])
	return filled
}

// Reset clears every value and returns both dimensions to the default unit.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// Clear empties every value but keeps the selected units.
func (f *Form) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = make(map[string]string, len(Fields))
}

func (f *Form) reset() {
	f.values = make(map[string]string, len(Fields))
	f.units = map[string]Unit{
		FieldWidth:  DefaultUnit,
		FieldHeight: DefaultUnit,
	}
}

// ValidateDimensions checks width and height: both empty is fine, otherwise
// both must be finite numbers greater than zero.
func (f *Form) ValidateDimensions() error {
	_, _, err := f.dimensions()
	return err
}

// dimensions returns the trimmed width and height after validation.
func (f *Form) dimensions() (string, string, error) {
	width := strings.TrimSpace(f.Value(FieldWidth))
	height := strings.TrimSpace(f.Value(FieldHeight))

	if width == "" && height == "" {
		return "", "", nil
	}
	if width == "" || height == "" {
		return "", "", ErrDimensionsIncomplete
	}
	if !positive(width) || !positive(height) {
		return "", "", ErrInvalidDimensions
	}
	return width, height, nil
}

func positive(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v > 0
}

func isDimension(field string) bool {
	return field == FieldWidth || field == FieldHeight
}

func restoredUnit(raw any) Unit {
	s, ok := raw.(string)
	if !ok {
		return DefaultUnit
	}
	if u, ok := ParseUnit(s); ok {
		return u
	}
	return DefaultUnit
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}
