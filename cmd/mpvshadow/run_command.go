package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mpvshadow/internal/logging"
	"mpvshadow/internal/session"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a shadowing session against mpv",
		Long: `Connect to mpv's IPC socket and wait for the cut trigger.

Each trigger cuts the current subtitle line into a reference clip, replays it,
records the microphone for the same length, and compares the pitch of the take
with the reference. The terminal UI shows the latest result and lets you pick
the capture device; with --headless (or when stdout is not a terminal) results
are logged instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), ctx, headless || !shouldColorize(os.Stdout), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Log results instead of starting the terminal UI")
	return cmd
}

func runSession(cmdCtx context.Context, ctx *commandContext, headless bool, stderr io.Writer) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logger, logPath, err := logging.NewFromConfig(cfg, runID, headless)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: logging.SessionLogPattern, Exclude: []string{logPath}},
	)

	sess, err := session.New(signalCtx, session.Options{
		Config:   cfg,
		Logger:   logger,
		Headless: headless,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Run(signalCtx); err != nil {
		return err
	}
	if !headless && logPath != "" {
		fmt.Fprintf(stderr, "Session log: %s\n", logPath)
	}
	return nil
}
