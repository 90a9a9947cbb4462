package quote_test

import (
	"encoding/json"
	"testing"

	"github.com/raphaelgruber/signchat/internal/logo"
	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeUnits(toggles []quote.Toggle) []quote.Unit {
	var out []quote.Unit
	for _, t := range toggles {
		if t.Active {
			out = append(out, t.Unit)
		}
	}
	return out
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		width   string
		height  string
		wantErr error
	}{
		{"both empty", "", "", nil},
		{"both positive", "10", "10", nil},
		{"decimals with spaces", " 2.5 ", "0.75", nil},
		{"width only", "10", "", quote.ErrDimensionsIncomplete},
		{"height only", "", "5", quote.ErrDimensionsIncomplete},
		{"negative height", "10", "-1", quote.ErrInvalidDimensions},
		{"zero height", "10", "0", quote.ErrInvalidDimensions},
		{"not a number", "ten", "10", quote.ErrInvalidDimensions},
		{"infinity", "Inf", "10", quote.ErrInvalidDimensions},
		{"nan", "10", "NaN", quote.ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := quote.NewForm()
			require.NoError(t, f.Set(quote.FieldWidth, tt.width))
			require.NoError(t, f.Set(quote.FieldHeight, tt.height))

			err := f.ValidateDimensions()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Please enter both width and height dimensions, or leave both empty.",
		quote.UserMessage(quote.ErrDimensionsIncomplete))
	assert.Equal(t, "Please enter valid positive numbers for dimensions.",
		quote.UserMessage(quote.ErrInvalidDimensions))
	assert.Empty(t, quote.UserMessage(nil))
}

func TestSetUnknownField(t *testing.T) {
	f := quote.NewForm()
	assert.ErrorIs(t, f.Set("color", "red"), quote.ErrUnknownField)
	assert.ErrorIs(t, f.SetUnit(quote.FieldBudget, quote.Feet), quote.ErrNotDimension)
	assert.ErrorIs(t, f.SetUnit(quote.FieldWidth, "furlongs"), quote.ErrUnknownUnit)
}

func TestTogglesSingleActive(t *testing.T) {
	f := quote.NewForm()
	assert.Equal(t, []quote.Unit{quote.Inches}, activeUnits(f.Toggles(quote.FieldWidth)))

	require.NoError(t, f.SetUnit(quote.FieldWidth, quote.Meters))
	assert.Equal(t, []quote.Unit{quote.Meters}, activeUnits(f.Toggles(quote.FieldWidth)))
	assert.Equal(t, []quote.Unit{quote.Inches}, activeUnits(f.Toggles(quote.FieldHeight)))

	next, err := f.CycleUnit(quote.FieldWidth)
	require.NoError(t, err)
	assert.Equal(t, quote.Inches, next, "cycling wraps around")
	assert.Equal(t, []quote.Unit{quote.Inches}, activeUnits(f.Toggles(quote.FieldWidth)))
}

func TestRestore(t *testing.T) {
	f := quote.NewForm()
	filled := f.Restore(map[string]any{
		"width":          48.0,
		"height":         "24",
		"widthUnit":      "feet",
		"budget":         "$2,000",
		"sizeDimensions": "48 feet × 24 inches",
		"uploadedLogos":  []any{},
		"logoCount":      0.0,
		"deadline":       nil,
		"unknown":        "x",
	})

	assert.Equal(t, 3, filled)
	assert.Equal(t, "48", f.Value(quote.FieldWidth))
	assert.Equal(t, "24", f.Value(quote.FieldHeight))
	assert.Equal(t, "$2,000", f.Value(quote.FieldBudget))
	assert.Empty(t, f.Value(quote.FieldDeadline))

	assert.Equal(t, []quote.Unit{quote.Feet}, activeUnits(f.Toggles(quote.FieldWidth)))
	assert.Equal(t, quote.Feet, f.Unit(quote.FieldWidth))
	assert.Equal(t, quote.Inches, f.Unit(quote.FieldHeight), "missing unit falls back to default")
}

func TestRestoreUnknownUnitFallsBack(t *testing.T) {
	f := quote.NewForm()
	require.NoError(t, f.SetUnit(quote.FieldHeight, quote.Meters))

	f.Restore(map[string]any{"widthUnit": "parsecs", "heightUnit": 3})

	assert.Equal(t, quote.Inches, f.Unit(quote.FieldWidth))
	assert.Equal(t, quote.Inches, f.Unit(quote.FieldHeight))
}

func TestReset(t *testing.T) {
	f := quote.NewForm()
	require.NoError(t, f.Set(quote.FieldMaterial, "acrylic"))
	require.NoError(t, f.SetUnit(quote.FieldHeight, quote.Centimeters))

	f.Reset()

	assert.Empty(t, f.Value(quote.FieldMaterial))
	assert.Equal(t, quote.Inches, f.Unit(quote.FieldHeight))
}

func TestDraftWithDimensions(t *testing.T) {
	f := quote.NewForm()
	require.NoError(t, f.Set(quote.FieldWidth, "10"))
	require.NoError(t, f.Set(quote.FieldHeight, " 4 "))
	require.NoError(t, f.SetUnit(quote.FieldWidth, quote.Feet))
	require.NoError(t, f.Set(quote.FieldIllumination, "back-lit"))

	logos := []logo.Uploaded{{ID: "logo_1", Filename: "a.png", URL: "https://dl/a.png"}}
	d, err := f.Draft(logos)
	require.NoError(t, err)

	m := d.Map()
	assert.Equal(t, "10 feet × 4 inches", m["sizeDimensions"])
	assert.Equal(t, "4", m["height"])
	assert.Equal(t, "feet", m["widthUnit"])
	assert.Equal(t, "inches", m["heightUnit"])
	assert.Equal(t, "back-lit", m["illumination"])
	assert.Equal(t, "", m["placement"], "empty fields are still sent")
	assert.Equal(t, 1, m["logoCount"])

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"uploadedLogos":[{"id":"logo_1","filename":"a.png","dropbox_url":"https://dl/a.png"}]`)
}

func TestDraftWithoutDimensions(t *testing.T) {
	f := quote.NewForm()
	require.NoError(t, f.Set(quote.FieldBudget, "500"))

	d, err := f.Draft(nil)
	require.NoError(t, err)

	m := d.Map()
	assert.NotContains(t, m, "sizeDimensions")
	assert.NotContains(t, m, "widthUnit")
	assert.NotContains(t, m, "heightUnit")
	assert.Equal(t, 0, m["logoCount"])

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"uploadedLogos":[]`)
}

func TestDraftRejectsInvalidDimensions(t *testing.T) {
	f := quote.NewForm()
	require.NoError(t, f.Set(quote.FieldWidth, "10"))

	_, err := f.Draft(nil)
	assert.ErrorIs(t, err, quote.ErrDimensionsIncomplete)
}

func TestParseUnit(t *testing.T) {
	tests := map[string]quote.Unit{
		"inches": quote.Inches,
		"FT":     quote.Feet,
		" cm ":   quote.Centimeters,
		"m":      quote.Meters,
	}
	for in, want := range tests {
		got, ok := quote.ParseUnit(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := quote.ParseUnit("yards")
	assert.False(t, ok)
}
