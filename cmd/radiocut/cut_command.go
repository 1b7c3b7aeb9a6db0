package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"radiocut/pkg/cutservice"
	"radiocut/pkg/metadata"
	"radiocut/pkg/output"
)

func newCutCommand(ctx *commandContext) *cobra.Command {
	var (
		duration float64
		join     bool
		trim     bool
	)

	cmd := &cobra.Command{
		Use:   "cut <audiocut_or_podcast_or_station_url> [output-file-name]",
		Short: "Download an audiocut, a podcast or a station timestamp as MP3",
		Example: `  radiocut cut http://radiocut.fm/audiocut/macri-gato/
  radiocut cut http://radiocut.fm/pdc/tin_nqn_/test --join
  radiocut cut http://radiocut.fm/radiostation/nacional870/listen/2017/07/01/10/00/00/ nacional --duration 3600`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger()
			if err != nil {
				return err
			}

			ref, err := metadata.ParseReference(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("duration") {
				if duration <= 0 {
					return fmt.Errorf("--duration must be positive")
				}
				ref = ref.WithDuration(duration)
			}

			var given string
			if len(args) > 1 {
				given = strings.TrimSuffix(args[1], ".mp3")
			}

			if trim {
				cfg.Engine.TrimHead = true
			}
			svc := cutservice.NewFromConfig(cfg, log)

			refs, err := svc.Expand(cmd.Context(), ref)
			if err != nil {
				return err
			}

			var results []cutservice.Result
			if join || ref.Kind == metadata.KindAudiocut {
				dst := output.FileNames([]string{ref.URL}, given, "mp3")[0]
				results, err = svc.Join(cmd.Context(), refs, dst)
			} else {
				urls := make([]string, len(refs))
				for i, r := range refs {
					urls[i] = r.URL
				}
				results, err = svc.CutAll(cmd.Context(), refs, output.FileNames(urls, given, "mp3"))
			}
			printResults(cmd, results)
			return err
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "The length to download, in seconds")
	cmd.Flags().BoolVar(&join, "join", false, "Concatenate a podcast's cuts as a single file")
	cmd.Flags().BoolVar(&trim, "trim", false, "Drop the audio preceding the requested start")

	return cmd
}

func printResults(cmd *cobra.Command, results []cutservice.Result) {
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%s\t%s\t%s\t%d bytes\n", r.Output, r.Reference.URL, r.Clip.Duration.Round(time.Second), r.Clip.Size)
	}
}
