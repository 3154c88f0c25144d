package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mpvshadow/internal/config"
	"mpvshadow/internal/deps"
	"mpvshadow/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, and the player socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines, problems := doctorLines(cmd.Context(), cfg, ctx.configPath, colorize)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if problems > 0 {
				return fmt.Errorf("doctor found %d problem(s)", problems)
			}
			return nil
		},
	}
}

// doctorLines renders every check and counts the failures that would stop a session.
func doctorLines(ctx context.Context, cfg *config.Config, configPath string, colorize bool) ([]string, int) {
	var lines []string
	problems := 0

	lines = append(lines, renderSectionHeader("Configuration", colorize)...)
	if configPath != "" {
		lines = append(lines, renderStatusLine("Config", statusInfo, configPath, colorize))
	}
	lines = append(lines, renderStatusLine("Mic backend", statusInfo, cfg.Mic.Backend, colorize))
	lines = append(lines, renderStatusLine("History", statusInfo, yesNo(cfg.History.Enabled), colorize))

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	depLines, missing := dependencyLines(preflight.CheckSystemDeps(ctx, cfg), colorize)
	lines = append(lines, depLines...)
	problems += missing

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Paths", colorize)...)
	for _, result := range preflight.RunAll(ctx, cfg) {
		optional := result.Name == "History database" || strings.HasPrefix(result.Name, "Player")
		lines = append(lines, renderStatusLine(result.Name, resultKind(result.Passed, optional), result.Detail, colorize))
		if !result.Passed && !optional {
			problems++
		}
	}
	return lines, problems
}

// dependencyLines renders one line per binary and returns how many required
// ones are unavailable.
func dependencyLines(statuses []deps.Status, colorize bool) ([]string, int) {
	lines := make([]string, 0, len(statuses)+1)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		if dep.Optional {
			detail += " (optional)"
		}
		lines = append(lines, renderStatusLine(dep.Name, resultKind(false, dep.Optional), detail, colorize))
	}

	missing := deps.Missing(statuses)
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, dep := range missing {
			names = append(names, dep.Name)
		}
		lines = append(lines, renderStatusLine("Missing dependencies", statusError, strings.Join(names, ", "), colorize))
	}
	return lines, len(missing)
}
