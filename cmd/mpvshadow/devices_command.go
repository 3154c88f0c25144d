package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mpvshadow/internal/config"
	"mpvshadow/internal/devices"
)

const enumerateTimeout = 5 * time.Second

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List microphone capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Mic.Backend == config.MicBackendNone {
				fmt.Fprintln(out, "Device enumeration disabled (mic.backend = \"none\")")
				if cfg.Mic.Device != "" {
					fmt.Fprintf(out, "Configured device: %s\n", cfg.Mic.Device)
				}
				return nil
			}

			enumCtx, cancel := context.WithTimeout(cmd.Context(), enumerateTimeout)
			defer cancel()
			list, err := devices.NewEnumerator(cfg).Enumerate(enumCtx)
			if err != nil {
				return fmt.Errorf("enumerate %s devices: %w", cfg.Mic.Backend, err)
			}
			if len(list) == 0 {
				fmt.Fprintf(out, "No capture devices found (backend %s)\n", cfg.Mic.Backend)
				return nil
			}
			fmt.Fprint(out, devicesTable(list, cfg.Mic.Device))
			fmt.Fprintln(out)
			return nil
		},
	}
}

// devicesTable marks the device a session would record from: the configured
// id when present, otherwise the first listed.
func devicesTable(list []devices.Device, preferred string) string {
	sel := devices.NewSelection(preferred)
	sel.SetKnown(list)
	active, _ := sel.Resolve()

	rows := make([][]string, 0, len(list))
	for _, d := range list {
		mark := ""
		if d.ID == active.ID {
			mark = "*"
		}
		rows = append(rows, []string{mark, d.ID, d.Name})
	}
	return renderTable([]column{
		{Header: ""},
		{Header: "ID"},
		{Header: "Name"},
	}, rows)
}
