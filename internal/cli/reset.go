package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doruk/focusdo/internal/logger"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("refusing to delete data without --yes")
		}

		st, log, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		defer logger.Sync(log)

		if err := st.Clear(); err != nil {
			return err
		}
		log.Info("storage cleared")
		fmt.Fprintln(cmd.OutOrStdout(), "All data deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm deletion")
}
