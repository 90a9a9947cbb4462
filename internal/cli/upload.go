package cli

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/signchat/internal/logo"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <files...>",
	Short: "Upload logo files for a session",
	Long: `Upload logo files so the designers can use them for your quote.

Accepted: JPG, PNG, PDF, AI and EPS files up to 10MB. Each file uploads on
its own; one failure does not stop the others.

Examples:
  signchat upload logo.png --session session_1718000000000_k3j5h2x9q
  signchat upload brand/*.pdf brand/*.ai -s session_1718000000000_k3j5h2x9q`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	app := newApp()
	fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", app.Session())

	var results []logo.Result
	if isTerminal(out) {
		var err error
		results, err = RunUploadProgress(ctx, app, args)
		if err != nil {
			return err
		}
	} else {
		results = app.AttachLogos(ctx, args)
		fmt.Fprint(out, formatUploadResults(defaultTheme, results))
	}

	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("%d of %d file(s) failed", countFailed(results), len(results))
		}
	}
	return nil
}

func countFailed(results []logo.Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
