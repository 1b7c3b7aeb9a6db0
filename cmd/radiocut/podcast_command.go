package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"radiocut/pkg/cutservice"
	"radiocut/pkg/history"
	"radiocut/pkg/podcastservice"
	"radiocut/pkg/show"
)

func newPodcastCommand(ctx *commandContext) *cobra.Command {
	var (
		since    string
		showFlag string
	)

	cmd := &cobra.Command{
		Use:   "podcast <podcast_dir> <history_file> <config_file> <base_public_url>",
		Short: "Record every finished airing of the configured shows and publish their feeds",
		Long: `Records, for every show in the YAML config file, the airings that ended since
the last run (kept in the history file) and regenerates the show's RSS feed.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger()
			if err != nil {
				return err
			}
			podcastDir, historyPath, showsPath, baseURL := args[0], args[1], args[2], args[3]

			shows, err := show.Load(showsPath)
			if err != nil {
				return fmt.Errorf("problem loading config: %w", err)
			}
			shows, err = show.Select(shows, strings.TrimSpace(showFlag))
			if err != nil {
				return err
			}
			ids := make([]string, len(shows))
			for i, s := range shows {
				ids[i] = s.ID
			}
			log.Infof("Loaded config for shows %v", ids)

			store, err := history.Open(cmd.Context(), cfg.History, historyPath)
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			if !strings.HasSuffix(baseURL, "/") {
				baseURL += "/"
			}
			svc := podcastservice.New(cutservice.NewFromConfig(cfg, log), store, podcastservice.Config{
				PodcastDir: podcastDir,
				BaseURL:    baseURL,
				SiteURL:    cfg.SiteURL,
				Border:     cfg.BorderDelta(),
				Since:      strings.TrimSpace(since),
			}, log)

			reports, err := svc.Run(cmd.Context(), shows)
			for _, r := range reports {
				log.Infof("Show %s: %d new episodes, %d published in %s", r.ShowID, len(r.Recorded), r.Episodes, r.Feed)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "A date (YYYY-MM-DD) to get stuff since")
	cmd.Flags().StringVar(&showFlag, "show", "", "Work with this show only")

	return cmd
}
