package sites

import (
	"context"
	"encoding/json"
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

// zeus scrapes zeustranslations.blogspot.com. Chapters are Blogger
// posts tagged with a per-novel label; the list comes from the paged
// Blogger JSON feed rather than the HTML sitemap widget.
type zeus struct {
	client *fetch.Client
}

func newZeus(c *fetch.Client) Adapter {
	return &zeus{client: c}
}

func (z *zeus) Name() string { return "zeus" }

// Assembly: zeus books keep the cover out of the linear reading order;
// a novel without a cover simply gets none.
func (z *zeus) Assembly() epub.Options {
	return epub.Options{IncludeCoverPage: true, CoverFirstInSpine: false}
}

var (
	zeusAuthorRe   = regexp.MustCompile(`(?i)\(Author:\s*(.+?)\)`)
	zeusChaptersRe = regexp.MustCompile(`(?i)\(Chapter[s]?[^)]*\)`)
	zeusSpaceRe    = regexp.MustCompile(`\s+`)
	zeusTitleRe    = regexp.MustCompile(`^(Chapter\s+\d+)\s+`)
)

func (z *zeus) FetchMetadata(ctx context.Context, novelURL string) (book.Metadata, error) {
	doc, err := z.client.Document(ctx, novelURL)
	if err != nil {
		return book.Metadata{}, fmt.Errorf("zeus: fetch novel page: %w", err)
	}

	meta := book.Metadata{Language: "en"}

	rawTitle := strings.TrimSpace(doc.Find("div.cdr_cover_page--header-title h1").First().Text())
	if rawTitle == "" {
		return book.Metadata{}, fmt.Errorf("zeus: novel title not found on %s", novelURL)
	}

	if m := zeusAuthorRe.FindStringSubmatch(rawTitle); m != nil {
		meta.Author = strings.TrimSpace(m[1])
	}
	title := zeusAuthorRe.ReplaceAllString(rawTitle, "")
	title = zeusChaptersRe.ReplaceAllString(title, "")
	meta.Title = strings.TrimSpace(zeusSpaceRe.ReplaceAllString(title, " "))

	var synopsis []string
	doc.Find("div.cdr_cover_page--description p").Each(func(_ int, p *goquery.Selection) {
		if text := format.CollapseSpace(p.Text()); text != "" {
			synopsis = append(synopsis, text)
		}
	})
	meta.Synopsis = strings.Join(synopsis, " ")

	if src, ok := doc.Find("div.cdr_cover_page--header-thumbnail img").First().Attr("data-src"); ok {
		if !strings.HasPrefix(src, "data:image") {
			meta.CoverURL = src
		}
	}

	z.parseExtraInfo(doc, &meta)

	return meta, nil
}

// parseExtraInfo reads the labelled blocks of the extra-info panel:
// associated names, author, year, status, and external links.
func (z *zeus) parseExtraInfo(doc *goquery.Document, meta *book.Metadata) {
	doc.Find("#extra-info .y6x11p").Each(func(_ int, block *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(block.Find(".stext").First().Text()))
		value := func() string {
			return format.CollapseSpace(block.Find("span").Not(".stext").First().Text())
		}

		switch label {
		case "associated names":
			meta.AlternateTitle = value()
		case "author":
			if v := value(); v != "" {
				meta.Author = v
			}
		case "links":
			block.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				if strings.HasPrefix(href, "//") {
					href = "https:" + href
				}
				meta.Links = append(meta.Links, book.Link{
					Text: strings.TrimSpace(a.Text()),
					Href: href,
				})
			})
		}
	})
}

// Blogger JSON feed shapes; only the fields we read.
type blogFeed struct {
	Feed struct {
		Entry []blogEntry `json:"entry"`
	} `json:"feed"`
}

type blogEntry struct {
	Title struct {
		T string `json:"$t"`
	} `json:"title"`
	Link []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"link"`
}

const zeusFeedPageSize = 150

func (z *zeus) ListChapters(ctx context.Context, novelURL string) ([]ChapterRef, error) {
	doc, err := z.client.Document(ctx, novelURL)
	if err != nil {
		return nil, fmt.Errorf("zeus: fetch novel page: %w", err)
	}

	label, ok := doc.Find("#cdrChaptersListSitemap").Attr("data-label")
	if !ok || label == "" {
		return nil, fmt.Errorf("zeus: chapter list label not found on %s", novelURL)
	}

	root, err := siteRoot(novelURL)
	if err != nil {
		return nil, fmt.Errorf("zeus: %w", err)
	}

	var refs []ChapterRef
	for start := 1; ; start += zeusFeedPageSize {
		feedURL := fmt.Sprintf("%s/feeds/posts/default/-/%s?alt=json&start-index=%d&max-results=%d",
			root, url.PathEscape(label), start, zeusFeedPageSize)

		body, err := z.client.Get(ctx, feedURL)
		if err != nil {
			return nil, fmt.Errorf("zeus: fetch chapter feed: %w", err)
		}

		var page blogFeed
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("zeus: parse chapter feed: %w", err)
		}
		if len(page.Feed.Entry) == 0 {
			break
		}

		for _, e := range page.Feed.Entry {
			href := ""
			for _, l := range e.Link {
				if l.Rel == "alternate" {
					href = l.Href
					break
				}
			}
			if href == "" {
				continue
			}
			refs = append(refs, ChapterRef{
				Title: zeusTitleRe.ReplaceAllString(strings.TrimSpace(e.Title.T), "$1: "),
				URL:   href,
			})
		}
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("zeus: no chapters found for label %q", label)
	}

	// Feed order is newest first. The novel's own cover page is a
	// labelled post too and sorts newest, so after reversal it sits at
	// the end and is dropped.
	refs = reverseRefs(refs)
	refs = refs[:len(refs)-1]
	if len(refs) == 0 {
		return nil, fmt.Errorf("zeus: only the announcement post found for label %q", label)
	}
	return refs, nil
}

func (z *zeus) FetchChapter(ctx context.Context, ref ChapterRef) (book.Chapter, error) {
	doc, err := z.client.Document(ctx, ref.URL)
	if err != nil {
		return book.Chapter{}, fmt.Errorf("zeus: fetch chapter %q: %w", ref.Title, err)
	}

	ch := book.Chapter{Title: ref.Title, Index: ref.Index}

	doc.Find("article.cdr_chapter_page--content p").Each(func(_ int, p *goquery.Selection) {
		inner, err := p.Html()
		if err != nil {
			return
		}
		if text := format.FlattenText(inner); text != "" {
			ch.Paragraphs = append(ch.Paragraphs, text)
		}
	})

	return ch, nil
}
