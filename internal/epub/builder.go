// Package epub assembles ordered chapter content and book metadata
// into an EPUB 3 package.
//
// The builder keeps the three package-level containers explicit: the
// manifest (every packaged resource), the spine (linear reading
// order), and the navigation entries (table of contents). Site
// structural differences are expressed through Options; everything
// else is shared.
package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/sillysack69/Zetro-Translations/internal/book"
)

const (
	mimetypeValue = "application/epub+zip"
	xhtmlType     = "application/xhtml+xml"
)

// ErrNoChapters indicates that Build was called with an empty chapter
// sequence.
var ErrNoChapters = errors.New("epub: no chapters to assemble")

// Options are the per-site structural flags. They are fixed by the
// site adapter, not user-configurable.
type Options struct {
	// IncludeCoverPage requests a cover image page. When no cover
	// image was retrieved the build proceeds without one.
	IncludeCoverPage bool

	// CoverFirstInSpine places the cover page as the first spine
	// entry. When false the cover page is still packaged and listed in
	// the navigation but stays out of the linear reading order.
	CoverFirstInSpine bool
}

// resource is a manifest entry together with its content.
type resource struct {
	id         string
	href       string // relative to the OEBPS directory
	mediaType  string
	properties string
	data       []byte
}

// navEntry is a single table-of-contents entry.
type navEntry struct {
	title string
	href  string
}

type builder struct {
	meta     book.Metadata
	opts     Options
	manifest []resource
	spine    []string
	nav      []navEntry
}

// Build serializes the chapters and metadata into a single EPUB file
// at outputPath. The write is all-or-nothing: the package is staged in
// a temporary file next to the destination and renamed into place only
// after a fully successful serialization.
func Build(meta book.Metadata, chapters []book.Chapter, opts Options, outputPath string) error {
	if len(chapters) == 0 {
		return ErrNoChapters
	}

	fillDefaults(&meta)

	b := &builder{meta: meta, opts: opts}

	b.add(resource{
		id:        "style",
		href:      "styles/style.css",
		mediaType: "text/css",
		data:      []byte(stylesheet),
	}, false)

	b.addCover()
	b.addIntro()

	for i, ch := range chapters {
		b.addChapter(i+1, ch)
	}

	b.addNavigation()

	return b.write(outputPath)
}

// add appends a resource to the manifest and, when inSpine is set, to
// the spine as well.
func (b *builder) add(res resource, inSpine bool) {
	b.manifest = append(b.manifest, res)
	if inSpine {
		b.spine = append(b.spine, res.id)
	}
}

// addCover packages the cover image and its image-only page. A missing
// cover image never fails the build; the cover is simply omitted.
func (b *builder) addCover() {
	if !b.opts.IncludeCoverPage || b.meta.Cover == nil || len(b.meta.Cover.Data) == 0 {
		return
	}

	imgHref := "images/cover" + coverExt(b.meta.Cover.MediaType)
	b.add(resource{
		id:         "cover-image",
		href:       imgHref,
		mediaType:  b.meta.Cover.MediaType,
		properties: "cover-image",
		data:       b.meta.Cover.Data,
	}, false)

	page := resource{
		id:        "cover",
		href:      "xhtml/cover.xhtml",
		mediaType: xhtmlType,
		data:      coverXHTML(imgHref),
	}
	b.add(page, b.opts.CoverFirstInSpine)
	b.nav = append(b.nav, navEntry{title: "Cover", href: page.href})
}

// addIntro packages the introduction page when the metadata carries
// anything worth showing beyond the bare title and author.
func (b *builder) addIntro() {
	if b.meta.Synopsis == "" && b.meta.AlternateTitle == "" &&
		b.meta.Translator == "" && len(b.meta.Links) == 0 {
		return
	}

	res := resource{
		id:        "intro",
		href:      "xhtml/intro.xhtml",
		mediaType: xhtmlType,
		data:      introXHTML(b.meta),
	}
	b.add(res, true)
	b.nav = append(b.nav, navEntry{title: "Introduction", href: res.href})
}

// addChapter packages one chapter content document. pos is the 1-based
// position within this build, which yields stable, collision-free, and
// sortable manifest ids.
func (b *builder) addChapter(pos int, ch book.Chapter) {
	title := strings.TrimSpace(ch.Title)
	if title == "" {
		title = "Untitled"
	}

	res := resource{
		id:        fmt.Sprintf("chapter-%04d", pos),
		href:      fmt.Sprintf("xhtml/chap_%04d.xhtml", pos),
		mediaType: xhtmlType,
		data:      chapterXHTML(title, ch.Paragraphs),
	}
	b.add(res, true)
	b.nav = append(b.nav, navEntry{title: title, href: res.href})
}

// addNavigation packages the EPUB 3 nav document and the NCX fallback.
// Neither joins the spine.
func (b *builder) addNavigation() {
	b.add(resource{
		id:         "nav",
		href:       "nav.xhtml",
		mediaType:  xhtmlType,
		properties: "nav",
		data:       navXHTML(b.meta.Title, b.nav),
	}, false)

	b.add(resource{
		id:        "ncx",
		href:      "toc.ncx",
		mediaType: "application/x-dtbncx+xml",
		data:      ncxXML(b.meta, b.nav),
	}, false)
}

// write serializes the package into a temporary file in the output
// directory and moves it into place. No partial file is left behind on
// failure.
func (b *builder) write(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("epub: create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".noveldl-*")
	if err != nil {
		return fmt.Errorf("epub: create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	err = b.writePackage(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("epub: write package: %w", err)
	}

	if err := os.Rename(tmpName, outputPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("epub: finalize output: %w", err)
	}

	return nil
}

// writePackage writes the zip container. The mimetype entry must come
// first and must be stored uncompressed. Entry headers carry no
// timestamps so identical inputs produce identical packages.
func (b *builder) writePackage(f *os.File) error {
	zw := zip.NewWriter(f)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(mimetypeValue)); err != nil {
		return err
	}

	entry := func(name string, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	if err := entry("META-INF/container.xml", []byte(containerXML)); err != nil {
		return err
	}

	opfData, err := b.renderOPF()
	if err != nil {
		return err
	}
	if err := entry("OEBPS/content.opf", opfData); err != nil {
		return err
	}

	for _, res := range b.manifest {
		if err := entry("OEBPS/"+res.href, res.data); err != nil {
			return err
		}
	}

	return zw.Close()
}

// fillDefaults applies the metadata defaults required for a valid
// package.
func fillDefaults(meta *book.Metadata) {
	if strings.TrimSpace(meta.Author) == "" {
		meta.Author = "Unknown"
	}
	if meta.Language == "" {
		meta.Language = "en"
	}
	if meta.Identifier == "" {
		meta.Identifier = newIdentifier()
	}
	if meta.Modified.IsZero() {
		meta.Modified = time.Now().UTC()
	}
}

func newIdentifier() string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("urn:uuid:generated-%d", time.Now().UnixNano())
	}
	return "urn:uuid:" + id.String()
}

func coverExt(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
