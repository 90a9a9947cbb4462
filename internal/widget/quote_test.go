package widget_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/raphaelgruber/signchat/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeToggles(toggles []quote.Toggle) []quote.Unit {
	var out []quote.Unit
	for _, t := range toggles {
		if t.Active {
			out = append(out, t.Unit)
		}
	}
	return out
}

func writeLogo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("logo-bytes-"+name), 0o644))
	return path
}

func TestOpenQuoteFormRestoresDraft(t *testing.T) {
	fb, app := newTestApp(t)
	fb.SetQuote(app.Session().String(), map[string]any{
		"width":              "12",
		"height":             "3",
		"widthUnit":          "feet",
		"materialPreference": "acrylic",
		"sizeDimensions":     "12 feet × 3 inches",
	})

	require.NoError(t, app.OpenQuoteForm(context.Background()))

	form := app.Form()
	assert.True(t, app.QuoteOpen())
	assert.Equal(t, "12", form.Value(quote.FieldWidth))
	assert.Equal(t, "acrylic", form.Value(quote.FieldMaterial))
	assert.Equal(t, []quote.Unit{quote.Feet}, activeToggles(form.Toggles(quote.FieldWidth)))
	assert.Equal(t, []quote.Unit{quote.Inches}, activeToggles(form.Toggles(quote.FieldHeight)))
}

func TestOpenQuoteFormWithoutDraftResetsUnits(t *testing.T) {
	_, app := newTestApp(t)
	require.NoError(t, app.Form().SetUnit(quote.FieldWidth, quote.Meters))

	require.NoError(t, app.OpenQuoteForm(context.Background()))
	assert.Equal(t, quote.Inches, app.Form().Unit(quote.FieldWidth))
}

func TestSubmitQuoteRequiresEmail(t *testing.T) {
	fb, app := newTestApp(t)
	require.NoError(t, app.OpenQuoteForm(context.Background()))

	_, err := app.SubmitQuote(context.Background())
	assert.ErrorIs(t, err, widget.ErrEmailNotCollected)
	assert.Equal(t, "Please provide your email address first.", widget.QuoteErrorMessage(err))
	assert.True(t, app.QuoteOpen())
	assert.Nil(t, fb.Quote(app.Session().String()))
}

func TestSubmitQuoteValidation(t *testing.T) {
	tests := []struct {
		name    string
		width   string
		height  string
		wantErr error
		message string
	}{
		{"negative height", "10", "-1", quote.ErrInvalidDimensions, "Please enter valid positive numbers for dimensions."},
		{"zero height", "10", "0", quote.ErrInvalidDimensions, "Please enter valid positive numbers for dimensions."},
		{"missing height", "10", "", quote.ErrDimensionsIncomplete, "Please enter both width and height dimensions, or leave both empty."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, app := newTestApp(t)
			collectEmail(t, app, "jane@example.com")
			require.NoError(t, app.OpenQuoteForm(context.Background()))
			require.NoError(t, app.Form().Set(quote.FieldWidth, tt.width))
			require.NoError(t, app.Form().Set(quote.FieldHeight, tt.height))

			_, err := app.SubmitQuote(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.message, widget.QuoteErrorMessage(err))
			assert.True(t, app.QuoteOpen())
			assert.Nil(t, fb.Quote(app.Session().String()))
		})
	}
}

func TestSubmitQuoteBackendError(t *testing.T) {
	fb, app := newTestApp(t)
	collectEmail(t, app, "jane@example.com")
	fb.SaveQuoteError = "database unavailable"
	require.NoError(t, app.OpenQuoteForm(context.Background()))
	require.NoError(t, app.Form().Set(quote.FieldBudget, "1000"))

	_, err := app.SubmitQuote(context.Background())
	var rejected *widget.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "database unavailable", rejected.Message)
	assert.Equal(t, "Error saving quote: database unavailable", widget.QuoteErrorMessage(err))
	assert.True(t, app.QuoteOpen(), "form stays open for correction")
	assert.Equal(t, "1000", app.Form().Value(quote.FieldBudget))
}

func TestSubmitQuoteEndToEnd(t *testing.T) {
	fb, app := newTestApp(t)
	ctx := context.Background()
	collectEmail(t, app, "jane@example.com")
	rec := record(app)

	results := app.AttachLogos(ctx, []string{writeLogo(t, "keep.png"), writeLogo(t, "drop.png")})
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
	require.Equal(t, 2, app.Logos().Count())

	var dropID string
	for _, r := range results {
		if r.Item.Filename == "drop.png" {
			dropID = r.Item.ID
		}
	}
	require.True(t, app.RemoveLogo(dropID))
	assert.False(t, app.RemoveLogo(dropID))
	assert.Equal(t, 1, app.Logos().Count())

	require.NoError(t, app.OpenQuoteForm(ctx))
	form := app.Form()
	require.NoError(t, form.Set(quote.FieldWidth, "10"))
	require.NoError(t, form.Set(quote.FieldHeight, "10"))
	require.NoError(t, form.SetUnit(quote.FieldHeight, quote.Feet))
	require.NoError(t, form.Set(quote.FieldLocation, "Denver, CO"))

	summary, err := app.SubmitQuote(ctx)
	require.NoError(t, err)

	saved := fb.Quote(app.Session().String())
	require.NotNil(t, saved)
	assert.Equal(t, "10 inches × 10 feet", saved["sizeDimensions"])
	assert.Equal(t, "feet", saved["heightUnit"])
	assert.EqualValues(t, 1, saved["logoCount"])
	logos, ok := saved["uploadedLogos"].([]any)
	require.True(t, ok)
	require.Len(t, logos, 1)
	assert.Equal(t, "keep.png", logos[0].(map[string]any)["filename"])

	assert.Equal(t, "1 file(s) uploaded", summary.Items[0].Value)
	assert.Equal(t, summary, app.Summary())
	assert.False(t, app.QuoteOpen())
	assert.Empty(t, form.Value(quote.FieldLocation), "form cleared on close")
	assert.Equal(t, quote.Feet, form.Unit(quote.FieldHeight), "units kept on close")
	assert.Zero(t, app.Logos().Count())

	transcript := app.Transcript()
	assert.Equal(t, widget.QuoteSubmittedMessage, transcript[len(transcript)-2].Text)
	assert.Equal(t, 1, rec.count(widget.QuoteSubmitted))
	assert.Equal(t, 1, rec.count(widget.LogoRemoved))

	require.NoError(t, app.RequestChanges(ctx))
	assert.Nil(t, app.Summary())
	assert.True(t, app.QuoteOpen())
	assert.Equal(t, "Denver, CO", form.Value(quote.FieldLocation), "saved draft reloaded")
}

func TestResetQuote(t *testing.T) {
	_, app := newTestApp(t)
	ctx := context.Background()

	app.AttachLogos(ctx, []string{writeLogo(t, "a.png")})
	require.NoError(t, app.Form().Set(quote.FieldDeadline, "Friday"))
	require.NoError(t, app.Form().SetUnit(quote.FieldWidth, quote.Centimeters))

	app.ResetQuote()

	assert.Empty(t, app.Form().Value(quote.FieldDeadline))
	assert.Equal(t, quote.Inches, app.Form().Unit(quote.FieldWidth))
	assert.Zero(t, app.Logos().Count())
	assert.Empty(t, app.Logos().Items())
}
