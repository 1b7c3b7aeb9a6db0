package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"radiocut/pkg/cutservice"
	"radiocut/pkg/domain"
	"radiocut/pkg/metadata"
	"radiocut/pkg/token"
)

func newTupleCommand(ctx *commandContext) *cobra.Command {
	var (
		baseURL string
		trim    bool
	)

	cmd := &cobra.Command{
		Use:   "tuple <station> <start_seconds> <duration_seconds> [output-file-name]",
		Short: "Download a cut given its station, timeline offset and duration",
		Long: `Reconstructs a cut without fetching any radiocut page: the station id, the
absolute start offset and the duration are given directly, together with the
archive host serving the station's manifests.`,
		Example: `  radiocut tuple nacional870 1499000000 3600 --base-url https://archive.example`,
		Args:    cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger()
			if err != nil {
				return err
			}

			meta, err := parseTuple(args[0], args[1], args[2], baseURL)
			if err != nil {
				return err
			}

			dst := fmt.Sprintf("%s_%d.mp3", meta.Station, int64(meta.StartSeconds))
			if len(args) > 3 {
				dst = strings.TrimSuffix(args[3], ".mp3") + ".mp3"
			}

			if trim {
				cfg.Engine.TrimHead = true
			}
			svc := cutservice.NewFromConfig(cfg, log).WithResolver(metadata.StaticResolver{Metadata: meta})

			ref := metadata.Reference{URL: fmt.Sprintf("%s/%s@%s", meta.BaseURL, meta.Station, args[1])}
			res, err := svc.Cut(cmd.Context(), ref, dst)
			if err != nil {
				return err
			}
			printResults(cmd, []cutservice.Result{res})
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Archive host serving the station's manifests")
	cmd.Flags().BoolVar(&trim, "trim", false, "Drop the audio preceding the requested start")
	_ = cmd.MarkFlagRequired("base-url")

	return cmd
}

func parseTuple(station, start, duration, baseURL string) (domain.CutMetadata, error) {
	if err := token.ValidateStation(station); err != nil {
		return domain.CutMetadata{}, err
	}
	startSeconds, err := strconv.ParseFloat(start, 64)
	if err != nil || startSeconds < 0 {
		return domain.CutMetadata{}, fmt.Errorf("invalid start offset %q", start)
	}
	durationSeconds, err := strconv.ParseFloat(duration, 64)
	if err != nil || durationSeconds <= 0 {
		return domain.CutMetadata{}, fmt.Errorf("invalid duration %q", duration)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return domain.CutMetadata{}, fmt.Errorf("--base-url is required")
	}
	return domain.CutMetadata{
		Station:         station,
		BaseURL:         baseURL,
		StartSeconds:    startSeconds,
		DurationSeconds: durationSeconds,
	}, nil
}
