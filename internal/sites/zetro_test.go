package sites

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sillysack69/Zetro-Translations/internal/fetch"
)

const zetroNovelPage = `<html><body>
<h1>  Reborn as a Test Case  </h1>
<div class="author-content"><a href="#">Aoi Tsukino</a></div>
<div class="artist-content"><a href="#">SHINIGAMI-san</a></div>
<div class="summary_image">
  <img src="https://i0.wp.com/zetrotranslation.com/cover.jpg?resize=193%2C278&amp;ssl=1"/>
</div>
<div class="post-content_item">
  <div class="summary-content">OnGoing</div>
</div>
<div class="post-content_item">
  <div class="summary-content">Web Novel</div>
</div>
<div class="post-content_item">
  <div class="summary-content">テストケースに転生</div>
</div>
<div class="genres-content"><a href="#">Fantasy</a>, <a href="#">Comedy</a>, </div>
<div class="summary__content show-more">
  <h2>Synopsis</h2>
  <p>A developer wakes up inside the suite.</p>
  <blockquote>Support us on ko-fi!</blockquote>
  <p>Every assertion counts.</p>
  <a href="#">Read more</a>
</div>
<div id="manga-chapters-holder" data-id="4242"></div>
</body></html>`

func zetroChapterListHTML(srvURL string) string {
	return fmt.Sprintf(`<ul class="main">
<li class="wp-manga-chapter"><a href="%s/chapter-3/">Chapter 3 - The Build</a></li>
<li class="wp-manga-chapter"><a href="%s/chapter-2/">Chapter 2</a></li>
<li class="wp-manga-chapter"><a href="%s/chapter-1/">Chapter 1 - Hello</a></li>
</ul>`, srvURL, srvURL, srvURL)
}

const zetroChapterPage = `<html><body><div class="entry-content_wrap">
<p>Chapter 1 The Beginning</p>
<p>TL: enjoy the chapter!</p>
<p>The room was quiet.</p>
<p>&nbsp;</p>
<p>____________________</p>
<p>Then the tests<br>began to run.</p>
<p>He signed off.<br/>__________<br/>Morning came.</p>
</div></body></html>`

func newZetroServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/wp-admin/admin-ajax.php":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "manga_get_chapters", r.PostFormValue("action"))
			assert.Equal(t, "4242", r.PostFormValue("manga"))
			fmt.Fprint(w, zetroChapterListHTML(srv.URL))
		case r.URL.Path == "/novel/reborn-as-a-test-case/":
			fmt.Fprint(w, zetroNovelPage)
		default:
			fmt.Fprint(w, zetroChapterPage)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAdapter(t *testing.T, build func(*fetch.Client) Adapter) Adapter {
	t.Helper()
	return build(fetch.NewClient(fetch.Options{
		Retries: 1,
		Backoff: time.Millisecond,
		Timeout: 5 * time.Second,
	}))
}

// TestZetroFetchMetadata verifies landing-page extraction
func TestZetroFetchMetadata(t *testing.T) {
	srv := newZetroServer(t)
	z := newTestAdapter(t, newZetro)

	meta, err := z.FetchMetadata(context.Background(), srv.URL+"/novel/reborn-as-a-test-case/")
	require.NoError(t, err)

	assert.Equal(t, "Reborn as a Test Case", meta.Title)
	assert.Equal(t, "Aoi Tsukino", meta.Author)
	assert.Equal(t, "SHINIGAMI-san", meta.Translator)
	assert.Equal(t, "A developer wakes up inside the suite. Every assertion counts.", meta.Synopsis,
		"headings, donation blocks, and links should be stripped from the synopsis")
	assert.Equal(t, []string{"Fantasy", "Comedy"}, meta.Subjects)
	assert.Equal(t, "https://i0.wp.com/zetrotranslation.com/cover.jpg", meta.CoverURL,
		"resize query parameters should be stripped")
	assert.Equal(t, "テストケースに転生", meta.AlternateTitle)
	assert.Equal(t, "en", meta.Language)
}

// TestZetroFetchMetadata_NoTitle verifies a missing heading fails loudly
func TestZetroFetchMetadata_NoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><div>nothing here</div></body></html>")
	}))
	defer srv.Close()

	z := newTestAdapter(t, newZetro)
	_, err := z.FetchMetadata(context.Background(), srv.URL+"/novel/x/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title not found")
}

// TestZetroListChapters verifies the admin-ajax listing flow
func TestZetroListChapters(t *testing.T) {
	srv := newZetroServer(t)
	z := newTestAdapter(t, newZetro)

	refs, err := z.ListChapters(context.Background(), srv.URL+"/novel/reborn-as-a-test-case/")
	require.NoError(t, err)
	require.Len(t, refs, 3)

	assert.Equal(t, "Chapter 1: Hello", refs[0].Title, "newest-first listing should be reversed")
	assert.Equal(t, "Chapter 2: Untitled", refs[1].Title)
	assert.Equal(t, "Chapter 3: The Build", refs[2].Title)
	assert.Equal(t, srv.URL+"/chapter-1/", refs[0].URL)
	assert.Equal(t, 1, refs[0].Index)
	assert.Equal(t, 3, refs[2].Index)
}

// TestZetroListChapters_NoHolder verifies the missing data-id error
func TestZetroListChapters_NoHolder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><h1>Title</h1></body></html>")
	}))
	defer srv.Close()

	z := newTestAdapter(t, newZetro)
	_, err := z.ListChapters(context.Background(), srv.URL+"/novel/x/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data-id")
}

// TestZetroFetchChapter verifies paragraph extraction and noise filtering
func TestZetroFetchChapter(t *testing.T) {
	srv := newZetroServer(t)
	z := newTestAdapter(t, newZetro)

	ch, err := z.FetchChapter(context.Background(), ChapterRef{
		Title: "Chapter 1: Hello",
		URL:   srv.URL + "/chapter-1/",
		Index: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "Chapter 1: Hello", ch.Title)
	assert.Equal(t, 1, ch.Index)
	assert.Equal(t, []string{
		"The room was quiet.",
		"Then the tests began to run.",
		"He signed off. Morning came.",
	}, ch.Paragraphs, "headings, TL notes, separators, and blanks should be dropped, including underscore rules after a line break")
}

// TestIsZetroNoise verifies the filler classifier
func TestIsZetroNoise(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", true},
		{"TL: please read on the original site", true},
		{"____", true},
		{"Chapter 12", true},
		{"chapter 3 the fall", true},
		{"The chapter of his life was over.", false},
		{"A TL;DR would not help here.", false},
		{"Plain story text.", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, isZetroNoise(tc.text), "%q", tc.text)
	}
}
