package quote

import (
	"fmt"
	"strings"
)

const notSpecified = "Not specified"

// Next-steps text shown after a quote is submitted.
const (
	NextStepLogosUploaded = "Your logo files have been uploaded successfully and are ready for our designers to work with."
	NextStepEmailLogos    = "Please email your logo files to info@signize.us so our designers can work with your brand assets."
	NextStepReview        = "Our team will review your requirements and get back to you with a mockup and quote within a few hours."
)

// SummaryItem is one labelled line of the summary.
type SummaryItem struct {
	Label string
	Value string
}

// Summary is the confirmation shown once a quote is saved.
type Summary struct {
	Title     string
	Items     []SummaryItem
	NextSteps []string
}

// Summarize builds the confirmation for a saved draft.
func Summarize(d Draft) Summary {
	s := Summary{Title: "Your Quote Request Details"}

	if n := len(d.Logos); n > 0 {
		s.Items = append(s.Items, SummaryItem{"Logo Files", fmt.Sprintf("%d file(s) uploaded", n)})
	}

	s.Items = append(s.Items,
		SummaryItem{"Size & Dimensions", orNotSpecified(d.SizeDimensions())},
		SummaryItem{"Material", orNotSpecified(d.Fields[FieldMaterial])},
		SummaryItem{"Illumination", orNotSpecified(d.Fields[FieldIllumination])},
		SummaryItem{"Installation Surface", orNotSpecified(d.Fields[FieldSurface])},
		SummaryItem{"Location", orNotSpecified(d.Fields[FieldLocation])},
		SummaryItem{"Budget", orNotSpecified(d.Fields[FieldBudget])},
		SummaryItem{"Placement", orNotSpecified(d.Fields[FieldPlacement])},
		SummaryItem{"Deadline", orNotSpecified(d.Fields[FieldDeadline])},
	)

	if notes := d.Fields[FieldNotes]; notes != "" {
		s.Items = append(s.Items, SummaryItem{"Additional Notes", notes})
	}

	if len(d.Logos) > 0 {
		s.NextSteps = append(s.NextSteps, NextStepLogosUploaded)
	} else {
		s.NextSteps = append(s.NextSteps, NextStepEmailLogos)
	}
	s.NextSteps = append(s.NextSteps, NextStepReview)
	return s
}

// String renders the summary as plain text.
func (s Summary) String() string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString("\n")
	for _, item := range s.Items {
		fmt.Fprintf(&b, "  %s: %s\n", item.Label, item.Value)
	}
	b.WriteString("\nNext Steps:\n")
	for _, step := range s.NextSteps {
		fmt.Fprintf(&b, "  %s\n", step)
	}
	return b.String()
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}
