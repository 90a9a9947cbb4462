package quote

import (
	"encoding/json"
	"fmt"

	"github.com/raphaelgruber/signchat/internal/logo"
)

// Draft is a validated snapshot of the form ready to be saved.
type Draft struct {
	Fields     map[string]string
	WidthUnit  Unit
	HeightUnit Unit
	Logos      []logo.Uploaded
}

// Draft validates the dimensions and snapshots the form together with the
// accepted logo uploads.
func (f *Form) Draft(logos []logo.Uploaded) (Draft, error) {
	width, height, err := f.dimensions()
	if err != nil {
		return Draft{}, err
	}

	fields := f.Values()
	if width != "" {
		fields[FieldWidth] = width
		fields[FieldHeight] = height
	}
	if logos == nil {
		logos = []logo.Uploaded{}
	}

	return Draft{
		Fields:     fields,
		WidthUnit:  f.Unit(FieldWidth),
		HeightUnit: f.Unit(FieldHeight),
		Logos:      logos,
	}, nil
}

// HasDimensions reports whether both width and height are set.
func (d Draft) HasDimensions() bool {
	return d.Fields[FieldWidth] != "" && d.Fields[FieldHeight] != ""
}

// SizeDimensions formats the dimensions as "W unit × H unit", or "" when
// they are not set.
func (d Draft) SizeDimensions() string {
	if !d.HasDimensions() {
		return ""
	}
	return fmt.Sprintf("%s %s × %s %s", d.Fields[FieldWidth], d.WidthUnit, d.Fields[FieldHeight], d.HeightUnit)
}

// Map returns the form_data object sent to the backend. Every field is
// present; the size and unit keys only when both dimensions are set.
func (d Draft) Map() map[string]any {
	out := make(map[string]any, len(d.Fields)+5)
	for k, v := range d.Fields {
		out[k] = v
	}
	if d.HasDimensions() {
		out["sizeDimensions"] = d.SizeDimensions()
		out["widthUnit"] = string(d.WidthUnit)
		out["heightUnit"] = string(d.HeightUnit)
	}

	logos := d.Logos
	if logos == nil {
		logos = []logo.Uploaded{}
	}
	out["uploadedLogos"] = logos
	out["logoCount"] = len(logos)
	return out
}

// MarshalJSON encodes the draft as its form_data object.
func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}
