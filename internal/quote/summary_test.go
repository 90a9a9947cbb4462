package quote_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/signchat/internal/logo"
	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valueOf(s quote.Summary, label string) (string, bool) {
	for _, item := range s.Items {
		if item.Label == label {
			return item.Value, true
		}
	}
	return "", false
}

func TestSummarizeEmptyDraft(t *testing.T) {
	d, err := quote.NewForm().Draft(nil)
	require.NoError(t, err)

	s := quote.Summarize(d)

	_, hasLogos := valueOf(s, "Logo Files")
	assert.False(t, hasLogos)
	_, hasNotes := valueOf(s, "Additional Notes")
	assert.False(t, hasNotes)

	for _, label := range []string{"Size & Dimensions", "Material", "Illumination", "Installation Surface", "Location", "Budget", "Placement", "Deadline"} {
		v, ok := valueOf(s, label)
		require.True(t, ok, label)
		assert.Equal(t, "Not specified", v, label)
	}
	assert.Equal(t, []string{quote.NextStepEmailLogos, quote.NextStepReview}, s.NextSteps)
}

func TestSummarizeFullDraft(t *testing.T) {
	f := quote.NewForm()
	require.NoError(t, f.Set(quote.FieldWidth, "36"))
	require.NoError(t, f.Set(quote.FieldHeight, "12"))
	require.NoError(t, f.Set(quote.FieldLocation, "Austin, TX"))
	require.NoError(t, f.Set(quote.FieldNotes, "Needs to match our awning"))

	d, err := f.Draft([]logo.Uploaded{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)

	s := quote.Summarize(d)
	assert.Equal(t, "Logo Files", s.Items[0].Label)
	assert.Equal(t, "2 file(s) uploaded", s.Items[0].Value)

	v, _ := valueOf(s, "Size & Dimensions")
	assert.Equal(t, "36 inches × 12 inches", v)
	v, _ = valueOf(s, "Additional Notes")
	assert.Equal(t, "Needs to match our awning", v)
	assert.Equal(t, quote.NextStepLogosUploaded, s.NextSteps[0])

	text := s.String()
	assert.Contains(t, text, "Your Quote Request Details")
	assert.Contains(t, text, "Location: Austin, TX")
	assert.Contains(t, text, "Next Steps:")
}

func TestDraftFileRoundTrip(t *testing.T) {
	f := quote.NewForm()
	require.NoError(t, f.Set(quote.FieldWidth, "8"))
	require.NoError(t, f.Set(quote.FieldHeight, "2"))
	require.NoError(t, f.SetUnit(quote.FieldHeight, quote.Feet))
	require.NoError(t, f.Set(quote.FieldMaterial, "brushed aluminum"))

	d, err := f.Draft([]logo.Uploaded{{ID: "logo_1", Filename: "a.png", URL: "https://dl/a.png"}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, quote.WriteFormData(path, d.Map()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "dropbox_url: https://dl/a.png")

	data, err := quote.LoadDraftFile(path)
	require.NoError(t, err)

	restored := quote.NewForm()
	assert.Equal(t, len(quote.Fields), restored.Restore(data))
	assert.Equal(t, "brushed aluminum", restored.Value(quote.FieldMaterial))
	assert.Equal(t, "8", restored.Value(quote.FieldWidth))
	assert.Equal(t, quote.Feet, restored.Unit(quote.FieldHeight))
}

func TestLoadDraftFileErrors(t *testing.T) {
	_, err := quote.LoadDraftFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: [unclosed"), 0o644))
	_, err = quote.LoadDraftFile(path)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	data, err := quote.LoadDraftFile(empty)
	require.NoError(t, err)
	assert.Empty(t, data)
}
