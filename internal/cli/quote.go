package cli

import (
	"fmt"

	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/raphaelgruber/signchat/internal/widget"
	"github.com/spf13/cobra"
)

var (
	quoteFile       string
	quoteWidthUnit  string
	quoteHeightUnit string
	quoteLogos      []string

	// quoteFieldFlags maps flag names to form fields.
	quoteFieldFlags = []struct {
		flag  string
		field string
		usage string
	}{
		{"width", quote.FieldWidth, "sign width"},
		{"height", quote.FieldHeight, "sign height"},
		{"material", quote.FieldMaterial, "material preference"},
		{"illumination", quote.FieldIllumination, "illumination (front-lit, back-lit, none)"},
		{"surface", quote.FieldSurface, "installation surface"},
		{"location", quote.FieldLocation, "city and state"},
		{"budget", quote.FieldBudget, "budget"},
		{"placement", quote.FieldPlacement, "placement (indoor, outdoor, storefront)"},
		{"deadline", quote.FieldDeadline, "deadline"},
		{"notes", quote.FieldNotes, "additional notes"},
	}
	quoteFieldValues = make(map[string]*string)
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Show, submit or export the quote request of a session",
}

var quoteShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved quote draft as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := requireSession()
		if err != nil {
			return err
		}
		data, err := apiClient.GetQuote(cmd.Context(), sid.String())
		if err != nil {
			return fmt.Errorf("get quote: %w", err)
		}
		if len(data) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved quote for this session.")
			return nil
		}
		out, err := quote.EncodeYAML(data)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var quoteExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the saved quote draft to a YAML file",
	Long: `Write the saved quote draft to a YAML file. The file can be edited and
submitted again with 'signchat quote submit --file'.

Examples:
  signchat quote export draft.yaml --session session_1718000000000_k3j5h2x9q`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := requireSession()
		if err != nil {
			return err
		}
		data, err := apiClient.GetQuote(cmd.Context(), sid.String())
		if err != nil {
			return fmt.Errorf("get quote: %w", err)
		}
		if len(data) == 0 {
			return fmt.Errorf("no saved quote for session %s", sid)
		}
		if err := quote.WriteFormData(args[0], data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d fields to %s\n", len(data), args[0])
		return nil
	},
}

var quoteSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Fill in and submit a quote request",
	Long: `Fill in and submit a quote request.

Values are taken, in order, from the draft saved for the session, from
--file and from the field flags. Width and height must both be given or
both be left empty. Logo files passed with --logo are uploaded first.

Examples:
  signchat quote submit -s session_1718000000000_k3j5h2x9q -e jane@example.com \
    --width 48 --height 24 --width-unit inches --material acrylic --budget 2000
  signchat quote submit -s session_1718000000000_k3j5h2x9q -e jane@example.com --file draft.yaml
  signchat quote submit -e jane@example.com --logo logo.png --location "Austin, TX"`,
	Args: cobra.NoArgs,
	RunE: runQuoteSubmit,
}

func init() {
	for _, f := range quoteFieldFlags {
		quoteFieldValues[f.field] = quoteSubmitCmd.Flags().String(f.flag, "", f.usage)
	}
	quoteSubmitCmd.Flags().StringVarP(&quoteFile, "file", "f", "", "YAML or JSON draft file")
	quoteSubmitCmd.Flags().StringVar(&quoteWidthUnit, "width-unit", "", "width unit (inches, feet, cm, meters)")
	quoteSubmitCmd.Flags().StringVar(&quoteHeightUnit, "height-unit", "", "height unit (inches, feet, cm, meters)")
	quoteSubmitCmd.Flags().StringArrayVar(&quoteLogos, "logo", nil, "logo file to upload (repeatable)")

	quoteCmd.AddCommand(quoteShowCmd)
	quoteCmd.AddCommand(quoteSubmitCmd)
	quoteCmd.AddCommand(quoteExportCmd)
}

func runQuoteSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	app := newApp()
	fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", app.Session())

	if !app.Email().Collected {
		fmt.Fprintln(out, defaultTheme.errorStyle().Render(widget.EmailFirstMessage))
		return widget.ErrEmailNotCollected
	}

	if err := app.OpenQuoteForm(ctx); err != nil {
		logger.Warn("saved draft not loaded", "error", err)
	}
	form := app.Form()

	if quoteFile != "" {
		data, err := quote.LoadDraftFile(quoteFile)
		if err != nil {
			return err
		}
		filled := form.Restore(data)
		logger.Debug("draft file applied", "path", quoteFile, "filled", filled)
	}

	for _, f := range quoteFieldFlags {
		if cmd.Flags().Changed(f.flag) {
			if err := form.Set(f.field, *quoteFieldValues[f.field]); err != nil {
				return err
			}
		}
	}
	if err := applyUnitFlag(form, quote.FieldWidth, quoteWidthUnit); err != nil {
		return err
	}
	if err := applyUnitFlag(form, quote.FieldHeight, quoteHeightUnit); err != nil {
		return err
	}

	if len(quoteLogos) > 0 {
		results := app.AttachLogos(ctx, quoteLogos)
		fmt.Fprint(out, formatUploadResults(defaultTheme, results))
	}

	summary, err := app.SubmitQuote(ctx)
	if err != nil {
		fmt.Fprintln(out, defaultTheme.errorStyle().Render(widget.QuoteErrorMessage(err)))
		return err
	}

	fmt.Fprintln(out, defaultTheme.formatSummary(*summary))
	transcript := app.Transcript()
	if n := len(transcript); n > 0 && transcript[n-1].Sender == widget.SenderAssistant {
		printTranscript(out, transcript[n-1:])
	}
	return nil
}

func applyUnitFlag(form *quote.Form, field, value string) error {
	if value == "" {
		return nil
	}
	unit, ok := quote.ParseUnit(value)
	if !ok {
		return fmt.Errorf("--%s-unit %q: %w", field, value, quote.ErrUnknownUnit)
	}
	if err := form.SetUnit(field, unit); err != nil {
		return fmt.Errorf("set %s unit: %w", field, err)
	}
	return nil
}
