package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doruk/focusdo/internal/export"
	"github.com/doruk/focusdo/internal/logger"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON snapshot, overwriting stored domains",
	Long: `Import reads a snapshot written by 'focusdo export' and overwrites the
stored domains it contains. Domains with an unexpected shape are skipped
rather than aborting the import.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := export.FromJSON(args[0])
		if err != nil {
			return err
		}

		st, log, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		defer logger.Sync(log)

		skipped, err := st.Import(snap)
		if err != nil {
			return err
		}
		if len(skipped) > 0 {
			log.Warn("import skipped domains", zap.Strings("keys", skipped))
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped invalid domains: %s\n", strings.Join(skipped, ", "))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d domains from %s\n",
			len(snap.Domains)-len(skipped), args[0])
		return nil
	},
}
