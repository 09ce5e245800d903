package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/doruk/focusdo/internal/export"
	"github.com/doruk/focusdo/internal/logger"
	"github.com/doruk/focusdo/internal/task"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export all data as a JSON snapshot, or tasks as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, log, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		defer logger.Sync(log)

		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		switch exportFormat {
		case "json":
			if path == "" {
				path = defaultExportPath("json")
			}
			snap, err := st.Snapshot()
			if err != nil {
				return err
			}
			if err := export.ToJSON(snap, path); err != nil {
				return err
			}
		case "csv":
			if path == "" {
				path = defaultExportPath("csv")
			}
			store := task.NewStore(st, log)
			projects := make(map[string]*task.Project)
			for _, p := range store.Projects() {
				c := p
				projects[p.ID] = &c
			}
			if err := export.ToCSV(store.Tasks(), projects, path); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q (want json or csv)", exportFormat)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

func defaultExportPath(ext string) string {
	home, _ := os.UserHomeDir()
	name := fmt.Sprintf("focusdo-export-%s.%s", time.Now().Format("2006-01-02"), ext)
	return filepath.Join(home, name)
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json or csv")
}
