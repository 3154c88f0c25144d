package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mpvshadow/internal/config"
	"mpvshadow/internal/pitch"
	"mpvshadow/internal/wav"
)

func newPitchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pitch <file.wav>",
		Short: "Estimate the pitch contour of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			audio, result, err := estimateFile(cfg, args[0])
			if err != nil {
				return err
			}
			writePitchSummary(cmd.OutOrStdout(), args[0], audio, pitch.Summarize(result))
			return nil
		},
	}
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <reference.wav> <take.wav>",
		Short: "Compare the pitch of a take with its reference clip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, ref, err := estimateFile(cfg, args[0])
			if err != nil {
				return err
			}
			_, take, err := estimateFile(cfg, args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, comparisonTable(pitch.Compare(ref, take)))
			fmt.Fprintln(out)
			return nil
		},
	}
}

// estimateFile decodes path at the configured analysis rate and runs the
// estimator at whatever rate the decoder produced.
func estimateFile(cfg *config.Config, path string) (wav.Audio, pitch.Result, error) {
	audio, err := wav.ReadFile(path, cfg.Pitch.SampleRate)
	if err != nil {
		return wav.Audio{}, pitch.Result{}, err
	}
	settings := cfg.Pitch
	settings.SampleRate = audio.SampleRate
	return audio, pitch.Estimate(audio.Samples, pitch.FromSettings(settings)), nil
}

func writePitchSummary(out io.Writer, path string, audio wav.Audio, s pitch.Summary) {
	fmt.Fprintf(out, "File:        %s\n", path)
	fmt.Fprintf(out, "Source:      %d Hz, %d ch, %d-bit\n", audio.Source.SampleRate, audio.Source.Channels, audio.Source.BitsPerSample)
	fmt.Fprintf(out, "Duration:    %.2fs\n", audio.Duration())
	fmt.Fprintf(out, "Frames:      %d\n", s.Frames)
	fmt.Fprintf(out, "Voiced:      %.0f%%\n", s.VoicedRatio*100)
	if s.HasMedian {
		fmt.Fprintf(out, "Median f0:   %.1f Hz\n", s.MedianHz)
	} else {
		fmt.Fprintln(out, "Median f0:   - (no voiced frames)")
	}
}

func comparisonTable(cmp pitch.Comparison) string {
	median := func(s pitch.Summary) string {
		if !s.HasMedian {
			return "-"
		}
		return fmt.Sprintf("%.1f Hz", s.MedianHz)
	}
	rows := [][]string{
		{"Median f0", median(cmp.Reference), median(cmp.Take)},
		{"Voiced", fmt.Sprintf("%.0f%%", cmp.Reference.VoicedRatio*100), fmt.Sprintf("%.0f%%", cmp.Take.VoicedRatio*100)},
		{"Frames", fmt.Sprintf("%d", cmp.Reference.Frames), fmt.Sprintf("%d", cmp.Take.Frames)},
	}
	offset := "-"
	if cmp.HasOffset {
		offset = fmt.Sprintf("%+.0f cents", cmp.OffsetCents)
	}
	rows = append(rows, []string{"Offset", "", offset})
	contour := "-"
	if cmp.SharedFrames > 0 {
		contour = fmt.Sprintf("%.0f cents over %d frames", cmp.ContourCents, cmp.SharedFrames)
	}
	rows = append(rows, []string{"Contour distance", "", contour})

	return renderTable([]column{
		{Header: ""},
		{Header: "Reference", Align: alignRight},
		{Header: "Take", Align: alignRight},
	}, rows)
}
