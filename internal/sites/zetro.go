package sites

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sillysack69/Zetro-Translations/internal/book"
	"github.com/sillysack69/Zetro-Translations/internal/epub"
	"github.com/sillysack69/Zetro-Translations/internal/fetch"
	"github.com/sillysack69/Zetro-Translations/internal/format"
)

// zetro scrapes zetrotranslation.com, a Madara-style WordPress site.
// The chapter list hides behind the theme's admin-ajax endpoint.
type zetro struct {
	client *fetch.Client
}

func newZetro(c *fetch.Client) Adapter {
	return &zetro{client: c}
}

func (z *zetro) Name() string { return "zetro" }

// Assembly: the original zetro output always carried a cover page and
// put it first in the spine.
func (z *zetro) Assembly() epub.Options {
	return epub.Options{IncludeCoverPage: true, CoverFirstInSpine: true}
}

func (z *zetro) FetchMetadata(ctx context.Context, novelURL string) (book.Metadata, error) {
	doc, err := z.client.Document(ctx, novelURL)
	if err != nil {
		return book.Metadata{}, fmt.Errorf("zetro: fetch novel page: %w", err)
	}

	meta := book.Metadata{Language: "en"}

	meta.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	if meta.Title == "" {
		return book.Metadata{}, fmt.Errorf("zetro: novel title not found on %s", novelURL)
	}

	meta.Author = strings.TrimSpace(doc.Find("div.author-content").First().Text())
	meta.Translator = strings.TrimSpace(doc.Find("div.artist-content").First().Text())

	if summary := doc.Find("div.summary__content.show-more").First(); summary.Length() > 0 {
		summary.Find("h1, h2, blockquote, a").Remove()
		meta.Synopsis = format.CollapseSpace(summary.Text())
	}

	for _, genre := range strings.Split(doc.Find("div.genres-content").First().Text(), ",") {
		if genre = strings.TrimSpace(genre); genre != "" {
			meta.Subjects = append(meta.Subjects, genre)
		}
	}

	if src, ok := doc.Find("div.summary_image img").First().Attr("src"); ok {
		// Strip resize query parameters to get the full-size image.
		cover, _, _ := strings.Cut(src, "?")
		meta.CoverURL = cover
	}

	if alt := doc.Find("div.summary-content").Eq(2); alt.Length() > 0 {
		meta.AlternateTitle = strings.TrimSpace(alt.Text())
	}

	return meta, nil
}

func (z *zetro) ListChapters(ctx context.Context, novelURL string) ([]ChapterRef, error) {
	doc, err := z.client.Document(ctx, novelURL)
	if err != nil {
		return nil, fmt.Errorf("zetro: fetch novel page: %w", err)
	}

	novelID, ok := doc.Find("#manga-chapters-holder").Attr("data-id")
	if !ok || novelID == "" {
		return nil, fmt.Errorf("zetro: manga-chapters-holder data-id not found on %s", novelURL)
	}

	root, err := siteRoot(novelURL)
	if err != nil {
		return nil, fmt.Errorf("zetro: %w", err)
	}

	body, err := z.client.PostForm(ctx, root+"/wp-admin/admin-ajax.php", url.Values{
		"action": {"manga_get_chapters"},
		"manga":  {novelID},
	})
	if err != nil {
		return nil, fmt.Errorf("zetro: fetch chapter list: %w", err)
	}

	frag, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("zetro: parse chapter list: %w", err)
	}

	var refs []ChapterRef
	frag.Find("li a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		refs = append(refs, ChapterRef{
			Title: book.NormalizeChapterTitle(a.Text()),
			URL:   href,
		})
	})

	if len(refs) == 0 {
		return nil, fmt.Errorf("zetro: no chapters found for %s", novelURL)
	}

	// The endpoint lists newest first.
	return reverseRefs(refs), nil
}

var (
	zetroTLNoteRe    = regexp.MustCompile(`^TL:`)
	zetroSeparatorRe = regexp.MustCompile(`^_+`)
	zetroHeadingRe   = regexp.MustCompile(`(?i)^chapter\s*\d+`)
	zetroBreakRuleRe = regexp.MustCompile(`(?i)(<br\s*/?>\s*)_+`)
)

func (z *zetro) FetchChapter(ctx context.Context, ref ChapterRef) (book.Chapter, error) {
	doc, err := z.client.Document(ctx, ref.URL)
	if err != nil {
		return book.Chapter{}, fmt.Errorf("zetro: fetch chapter %q: %w", ref.Title, err)
	}

	ch := book.Chapter{Title: ref.Title, Index: ref.Index}

	doc.Find("div.entry-content_wrap p").Each(func(_ int, p *goquery.Selection) {
		inner, err := p.Html()
		if err != nil {
			return
		}
		// Underscore rules after a line break are separators, not
		// prose; drop them before the break becomes a space.
		inner = zetroBreakRuleRe.ReplaceAllString(inner, "$1")
		text := format.FlattenText(inner)
		if isZetroNoise(text) {
			return
		}
		ch.Paragraphs = append(ch.Paragraphs, text)
	})

	return ch, nil
}

// isZetroNoise filters the filler the site injects between story
// paragraphs: empty placeholders, translator notes, underscore
// separators, and repeated chapter headings.
func isZetroNoise(text string) bool {
	if text == "" {
		return true
	}
	return zetroTLNoteRe.MatchString(text) ||
		zetroSeparatorRe.MatchString(text) ||
		zetroHeadingRe.MatchString(text)
}
