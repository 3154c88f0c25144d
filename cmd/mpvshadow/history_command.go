package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mpvshadow/internal/takes"
	"mpvshadow/internal/textutil"
)

const historyTextWidth = 40

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent takes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Take history disabled (history.enabled = false)")
				return nil
			}

			store, err := takes.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			list, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list takes: %w", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No takes recorded yet")
				return nil
			}
			fmt.Fprint(out, historyTable(list))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of takes to show")
	return cmd
}

func historyTable(list []*takes.Take) string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{
			t.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(t.MediaPath),
			textutil.Truncate(t.Text, historyTextWidth),
			fmt.Sprintf("%.2f-%.2f", t.WindowStart, t.WindowEnd),
			yesNo(t.MicPath != ""),
			formatOptional(t.LatencyMs, "%.0fms"),
			formatOptional(t.OffsetCents, "%+.0f¢"),
		})
	}
	return renderTable([]column{
		{Header: "When"},
		{Header: "Media", MaxWidth: 24},
		{Header: "Line", MaxWidth: historyTextWidth},
		{Header: "Window", Align: alignRight},
		{Header: "Mic"},
		{Header: "Latency", Align: alignRight},
		{Header: "Offset", Align: alignRight},
	}, rows)
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
