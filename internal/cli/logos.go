package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logosCmd = &cobra.Command{
	Use:   "logos",
	Short: "List the logos the backend holds for a session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}

		text, err := newApp().ListSessionLogos(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}
