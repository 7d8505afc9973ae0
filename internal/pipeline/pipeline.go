// Package pipeline drives a full download run: resolve the chapter
// list, select the requested range, fetch chapters sequentially, and
// hand the result to the EPUB assembler.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sillysack69/Zetro-Translations/internal/book"
	"github.com/sillysack69/Zetro-Translations/internal/epub"
	"github.com/sillysack69/Zetro-Translations/internal/fetch"
	"github.com/sillysack69/Zetro-Translations/internal/sites"
)

// Request describes one download run.
type Request struct {
	Adapter    sites.Adapter
	NovelURL   string
	RangeExpr  string
	OutputPath string
}

// Runner executes download runs. Chapters are fetched one at a time in
// order; a failed chapter is logged and skipped so the run can finish
// with a partial book.
type Runner struct {
	Client *fetch.Client
	Log    *slog.Logger
}

// NewRunner creates a Runner. A nil logger falls back to slog.Default.
func NewRunner(client *fetch.Client, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{Client: client, Log: log}
}

// Run performs the complete download-and-assemble flow for a request.
// Metadata and chapter-list failures are fatal; individual chapter
// failures and cover problems are not.
func (r *Runner) Run(ctx context.Context, req Request) error {
	site := req.Adapter.Name()

	// A malformed range expression must fail before any request goes
	// out; only the bounds check waits for the chapter total.
	if err := book.ValidateRangeExpr(req.RangeExpr); err != nil {
		return err
	}

	meta, err := req.Adapter.FetchMetadata(ctx, req.NovelURL)
	if err != nil {
		return fmt.Errorf("fetch book metadata: %w", err)
	}
	r.Log.Info("book resolved", "site", site, "title", meta.Title, "author", meta.Author)

	refs, err := req.Adapter.ListChapters(ctx, req.NovelURL)
	if err != nil {
		return fmt.Errorf("fetch chapter list: %w", err)
	}
	r.Log.Info("chapter list resolved", "total", len(refs))

	rng, err := book.ParseRange(req.RangeExpr, len(refs))
	if err != nil {
		return err
	}

	meta.Cover = r.fetchCover(ctx, meta.CoverURL)

	selected := refs[rng.Start-1 : rng.End]
	chapters := make([]book.Chapter, 0, len(selected))
	for i, ref := range selected {
		r.Log.Info("downloading chapter", "n", i+1, "of", len(selected), "title", ref.Title)

		ch, err := req.Adapter.FetchChapter(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Log.Warn("skipping chapter", "title", ref.Title, "error", err)
			continue
		}
		if len(ch.Paragraphs) == 0 {
			r.Log.Warn("chapter has no content", "title", ref.Title)
		}
		chapters = append(chapters, ch)
	}

	if meta.Modified.IsZero() {
		meta.Modified = time.Now().UTC()
	}

	if err := epub.Build(meta, chapters, req.Adapter.Assembly(), req.OutputPath); err != nil {
		return fmt.Errorf("assemble EPUB: %w", err)
	}

	r.Log.Info("EPUB written", "path", req.OutputPath, "chapters", len(chapters), "skipped", len(selected)-len(chapters))
	return nil
}

// fetchCover downloads and re-encodes the cover image. Any failure is
// logged and results in a book without a cover.
func (r *Runner) fetchCover(ctx context.Context, coverURL string) *book.CoverImage {
	if coverURL == "" {
		return nil
	}

	raw, err := r.Client.Get(ctx, coverURL)
	if err != nil {
		r.Log.Warn("cover download failed, continuing without cover", "url", coverURL, "error", err)
		return nil
	}

	cover, err := prepareCover(raw)
	if err != nil {
		r.Log.Warn("cover processing failed, continuing without cover", "url", coverURL, "error", err)
		return nil
	}
	return cover
}
