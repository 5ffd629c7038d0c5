package main

import (
	"github.com/spf13/cobra"

	"github.com/ignite/creative-catalog/internal/media"
	"github.com/ignite/creative-catalog/internal/pipeline"
	"github.com/ignite/creative-catalog/internal/pkg/httpretry"
)

func downloadCmd() *cobra.Command {
	var thumbs int

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download ad creatives to the media directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, mirror, err := openCatalog(ctx)
			if err != nil {
				return err
			}

			client := httpretry.NewRetryClient(httpretry.NewNoRedirectClient(), cfg.Media.MaxRetries)
			fetcher := media.NewFetcher(client,
				media.WithFetchTimeout(cfg.Media.Timeout()),
				media.WithMaxRedirects(cfg.Media.MaxRedirects))

			opts := pipeline.DownloadOptions{
				Dir:            cfg.Media.Dir,
				Naming:         media.Naming(cfg.Media.Naming),
				DefaultExt:     cfg.Media.DefaultExt,
				Delay:          cfg.Media.Delay(),
				ThumbnailWidth: cfg.Media.ThumbnailWidth,
				Progress:       newProgress(store.Len(), "Downloading creatives"),
			}
			if cmd.Flags().Changed("thumbnails") {
				opts.ThumbnailWidth = thumbs
			}
			if mirror != nil && cfg.Storage.MirrorImages {
				opts.Uploader = mirror
			}

			summary, runErr := pipeline.DownloadRun(ctx, store, fetcher, opts)
			return finish(cmd.OutOrStdout(), "Download", cfg.Reports.FailedDownload, summary, runErr)
		},
	}

	cmd.Flags().IntVar(&thumbs, "thumbnails", 0, "thumbnail width in pixels (0 disables)")
	return cmd
}
