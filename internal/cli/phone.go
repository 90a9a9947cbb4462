package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var phoneCmd = &cobra.Command{
	Use:   "phone",
	Short: "Manage the callback phone number of a session",
}

var phoneSetCmd = &cobra.Command{
	Use:   "set <number>",
	Short: "Save a callback phone number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := newApp().SavePhone(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Phone number saved.")
		return nil
	},
}

var phoneGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the saved phone number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		number, err := newApp().LoadPhone(cmd.Context())
		if err != nil {
			return err
		}
		if number == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No phone number saved.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), number)
		return nil
	},
}

func init() {
	phoneCmd.AddCommand(phoneSetCmd)
	phoneCmd.AddCommand(phoneGetCmd)
}
