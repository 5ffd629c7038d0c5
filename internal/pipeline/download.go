package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/media"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
	"github.com/ignite/creative-catalog/internal/report"
	"github.com/ignite/creative-catalog/internal/storage"
)

// ImageUploader copies a local creative to remote storage.
// *storage.S3Mirror satisfies it.
type ImageUploader interface {
	UploadFile(ctx context.Context, localPath, contentType string) (string, error)
}

// ExtraS3Key is the Extra field holding the mirrored object key.
const ExtraS3Key = "s3Key"

// DownloadOptions configures DownloadRun.
type DownloadOptions struct {
	Dir            string
	Naming         media.Naming
	DefaultExt     string
	Delay          time.Duration
	ThumbnailWidth int
	Uploader       ImageUploader
	Progress       Progress
}

// DownloadRun fetches the creative of every record in catalog order.
// Records without a URL and failed downloads are flagged. A local write
// failure or a failed catalog save aborts the run.
func DownloadRun(ctx context.Context, store *storage.CatalogStore, fetcher *media.Fetcher, opts DownloadOptions) (Summary, error) {
	if opts.DefaultExt == "" {
		opts.DefaultExt = ".jpg"
	}
	summary := newSummary()
	records := store.Records()

	logger.Info("pipeline: download started", "run", summary.RunID, "records", len(records), "dir", opts.Dir)

	// claimed maps a local file to the record that owns it. Files attached
	// by earlier runs keep their owner.
	claimed := make(map[string]string, len(records))
	for _, rec := range records {
		if _, taken := claimed[rec.LocalImage]; rec.LocalImage != "" && !taken {
			claimed[rec.LocalImage] = rec.Key()
		}
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		dest, err := media.Destination(opts.Dir, rec, opts.Naming, opts.DefaultExt)
		if err != nil {
			summary.Failed++
			summary.Flagged = append(summary.Flagged, report.EntryFor(rec, err.Error()))
			tick(opts.Progress, 1)
			continue
		}
		if owner, taken := claimed[dest]; taken && owner != rec.Key() {
			unique := media.Disambiguate(dest, rec.Key())
			logger.Warn("pipeline: file name collides with another ad", "ad", rec.Name, "owner", owner, "file", unique)
			dest = unique
		}
		claimed[dest] = rec.Key()

		outcome := fetcher.Fetch(ctx, rec.SourceURL, dest)
		switch outcome.Status {
		case media.StatusFailed:
			if outcome.Fatal() {
				return summary, fmt.Errorf("download %s: %w", rec.Name, outcome.Err)
			}
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logger.Warn("pipeline: download failed", "ad", rec.Name, "url", rec.SourceURL, "reason", outcome.Reason)
			summary.Failed++
			summary.Flagged = append(summary.Flagged, report.EntryFor(rec, outcome.Reason))

		case media.StatusSkipped:
			summary.Skipped++
			if rec.SourceURL == "" {
				summary.Flagged = append(summary.Flagged, report.EntryFor(rec, outcome.Reason))
				break
			}
			if rec.LocalImage != dest {
				if err := attach(ctx, store, rec, dest, opts); err != nil {
					return summary, err
				}
			}

		case media.StatusSuccess:
			summary.Succeeded++
			if err := attach(ctx, store, rec, outcome.LocalPath, opts); err != nil {
				return summary, err
			}
		}
		tick(opts.Progress, 1)

		networked := outcome.Status != media.StatusSkipped
		if networked && i < len(records)-1 {
			if err := wait(ctx, opts.Delay); err != nil {
				return summary, err
			}
		}
	}

	logger.Info("pipeline: download finished", "run", summary.RunID,
		"succeeded", summary.Succeeded, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// attach records a local creative on its catalog entry and saves.
func attach(ctx context.Context, store *storage.CatalogStore, rec domain.AdRecord, path string, opts DownloadOptions) error {
	update := describeLocal(path)

	if update.MediaType == domain.MediaImage && opts.ThumbnailWidth > 0 {
		thumb := thumbnailPath(opts.Dir, path)
		if err := media.MakeThumbnail(path, thumb, opts.ThumbnailWidth); err != nil {
			logger.Warn("pipeline: thumbnail failed", "file", path, "error", err)
		} else {
			update.Thumbnail = thumb
		}
	}

	var s3Key string
	if opts.Uploader != nil {
		key, err := opts.Uploader.UploadFile(ctx, path, update.contentType)
		if err != nil {
			logger.Warn("pipeline: image mirror failed", "file", path, "error", err)
		} else {
			s3Key = key
		}
	}

	err := store.Update(rec.Key(), func(r *domain.AdRecord) {
		r.LocalImage = path
		if update.MediaType != domain.MediaUnknown {
			r.MediaType = update.MediaType
		}
		if update.Width > 0 {
			r.Width, r.Height = update.Width, update.Height
		}
		if update.Thumbnail != "" {
			r.Thumbnail = update.Thumbnail
		}
		if s3Key != "" {
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[ExtraS3Key] = s3Key
		}
	})
	if err != nil {
		return err
	}
	if err := store.Save(ctx); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

type localMedia struct {
	MediaType   domain.MediaKind
	Width       int
	Height      int
	Thumbnail   string
	contentType string
}

// describeLocal sniffs a downloaded file. The extension chosen from the URL
// is kept even when the content disagrees; the mismatch is only logged.
func describeLocal(path string) localMedia {
	info, err := media.Inspect(path)
	if info == nil {
		logger.Warn("pipeline: cannot inspect file", "file", path, "error", err)
		return localMedia{}
	}

	out := localMedia{contentType: info.ContentType}
	if want := media.ExtensionForContentType(info.ContentType); want != ".bin" && !sameExt(want, filepath.Ext(path)) {
		logger.Warn("pipeline: extension does not match content", "file", path, "content_type", info.ContentType)
	}

	switch {
	case err == nil:
		out.MediaType = domain.MediaImage
		out.Width, out.Height = info.Width, info.Height
	case errors.Is(err, media.ErrNotImage) && info.ContentType == "video/mp4":
		out.MediaType = domain.MediaVideo
	default:
		logger.Warn("pipeline: unrecognized media", "file", path, "content_type", info.ContentType)
	}
	return out
}

func sameExt(a, b string) bool {
	norm := func(e string) string {
		e = strings.ToLower(e)
		if e == ".jpeg" {
			return ".jpg"
		}
		return e
	}
	return norm(a) == norm(b)
}

func thumbnailPath(dir, src string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	return filepath.Join(dir, "thumbs", strings.TrimSuffix(base, ext)+media.ThumbnailFormatExt(strings.ToLower(ext)))
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
