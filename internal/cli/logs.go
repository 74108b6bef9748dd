package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"freight-broker-be/internal/config"
	"freight-broker-be/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var (
		level  string
		module string
		limit  int
		file   string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent structured log entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = config.Load().App.LogFilePath
			}
			entries, err := logger.ReadLogs(file, level, module, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				printLogEntry(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "filter by level (debug, info, warn, error)")
	cmd.Flags().StringVar(&module, "module", "", "filter by module, e.g. RECONCILER")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum entries")
	cmd.Flags().StringVar(&file, "file", "", "log file (defaults to LOG_FILE_PATH)")
	return cmd
}

func levelColor(level string) *color.Color {
	switch level {
	case "error":
		return errColor
	case "warn":
		return warnColor
	case "info":
		return okColor
	}
	return color.New(color.FgWhite)
}

func printLogEntry(out io.Writer, e logger.LogEntry) {
	fmt.Fprintf(out, "%s ", e.Timestamp)
	levelColor(e.Level).Fprintf(out, "%-5s", e.Level)
	fmt.Fprintf(out, " [%s] %s", e.Module, e.Message)
	if len(e.Details) > 0 {
		if details, err := json.Marshal(e.Details); err == nil {
			fmt.Fprintf(out, " %s", details)
		}
	}
	fmt.Fprintln(out)
}
