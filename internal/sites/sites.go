// Package sites implements the per-site retrieval adapters and the
// registry that resolves which adapter handles a given novel URL.
//
// Supporting a new site means adding one registry entry and one
// Adapter implementation.
package sites

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/sillysack69/Zetro-Translations/internal/book"
	"github.com/sillysack69/Zetro-Translations/internal/epub"
	"github.com/sillysack69/Zetro-Translations/internal/fetch"
)

// ErrUnsupportedSite indicates that no adapter is registered for the
// requested site or URL domain.
var ErrUnsupportedSite = errors.New("sites: unsupported site")

// ChapterRef is a discovered chapter: its display title, source URL,
// and 1-based position in reading order.
type ChapterRef struct {
	Title string
	URL   string
	Index int
}

// Adapter is the fixed per-site capability set. Implementations fetch
// and parse site-specific HTML; they never touch the output path.
type Adapter interface {
	// Name returns the registry key of the site.
	Name() string

	// ListChapters returns the chapter descriptors of a novel in
	// reading order.
	ListChapters(ctx context.Context, novelURL string) ([]ChapterRef, error)

	// FetchChapter downloads and extracts a single chapter.
	FetchChapter(ctx context.Context, ref ChapterRef) (book.Chapter, error)

	// FetchMetadata extracts the book metadata from the novel's
	// landing page.
	FetchMetadata(ctx context.Context, novelURL string) (book.Metadata, error)

	// Assembly returns the site's structural flags for the EPUB
	// assembler.
	Assembly() epub.Options
}

type entry struct {
	domain string
	build  func(*fetch.Client) Adapter
}

var registry = map[string]entry{
	"zetro": {domain: "zetrotranslation.com", build: newZetro},
	"zeus":  {domain: "zeustranslations.blogspot.com", build: newZeus},
}

// ForName resolves an adapter by its site key.
func ForName(name string, client *fetch.Client) (Adapter, error) {
	e, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedSite, name, strings.Join(Names(), ", "))
	}
	return e.build(client), nil
}

// Detect resolves an adapter from the novel URL's host.
func Detect(novelURL string, client *fetch.Client) (Adapter, error) {
	u, err := url.Parse(novelURL)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse URL %q: %v", ErrUnsupportedSite, novelURL, err)
	}

	host := strings.ToLower(u.Hostname())
	for _, e := range registry {
		if strings.Contains(host, e.domain) {
			return e.build(client), nil
		}
	}

	return nil, fmt.Errorf("%w: no adapter for %q", ErrUnsupportedSite, host)
}

// Names returns the registered site keys in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// siteRoot returns "scheme://host" for a page URL, used to derive
// sibling endpoints (AJAX handlers, feeds) on the same site.
func siteRoot(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse URL %q: %w", pageURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q has no scheme or host", pageURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// reverseRefs flips a chapter list into reading order and assigns
// 1-based indexes. Both supported sites list newest chapters first.
func reverseRefs(refs []ChapterRef) []ChapterRef {
	out := make([]ChapterRef, 0, len(refs))
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		ref.Index = len(out) + 1
		out = append(out, ref)
	}
	return out
}
