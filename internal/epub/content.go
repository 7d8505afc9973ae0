package epub

import (
	"fmt"
	"html"
	"strings"

	"github.com/sillysack69/Zetro-Translations/internal/book"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

const stylesheet = `h1 { margin-bottom: 2em; }
h2 { margin-top: 2em; margin-bottom: 2em; }
p { text-indent: 0; margin-top: 1.4em; margin-bottom: 1.4em; }
hr { border: none; border-top: 2px solid #ccc; margin: 2em 0; }
img { max-width: 100%; height: auto; display: block; margin: 1em auto; }
`

// xhtmlDoc wraps a body fragment in a complete XHTML content document.
// cssHref is relative to the document's own location.
func xhtmlDoc(title, cssHref, body string) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\">\n")
	b.WriteString("<head>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<link rel=\"stylesheet\" type=\"text/css\" href=\"%s\"/>\n", cssHref)
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

// chapterXHTML renders one chapter: title heading, then one <p> per
// paragraph, closed off with a rule like the source site layout.
func chapterXHTML(title string, paragraphs []string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(title))
	for _, p := range paragraphs {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(p))
	}
	b.WriteString("<hr/>\n")
	return xhtmlDoc(title, "../styles/style.css", b.String())
}

// coverXHTML renders the image-only cover page.
func coverXHTML(imgHref string) []byte {
	body := fmt.Sprintf("<img src=\"../%s\" alt=\"Cover\"/>\n", imgHref)
	return xhtmlDoc("Cover", "../styles/style.css", body)
}

// introXHTML renders the introduction page with the metadata the
// landing page offered.
func introXHTML(meta book.Metadata) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(meta.Title))
	if meta.AlternateTitle != "" {
		fmt.Fprintf(&b, "<h3>Alternate Title: %s</h3>\n", html.EscapeString(meta.AlternateTitle))
	}
	if meta.Author != "" {
		fmt.Fprintf(&b, "<h3>Author: %s</h3>\n", html.EscapeString(meta.Author))
	}
	if meta.Translator != "" {
		fmt.Fprintf(&b, "<h3>Translator: %s</h3>\n", html.EscapeString(meta.Translator))
	}
	if meta.Synopsis != "" {
		fmt.Fprintf(&b, "<p><strong>Synopsis:</strong> %s</p>\n", html.EscapeString(meta.Synopsis))
	}
	if len(meta.Links) > 0 {
		b.WriteString("<h3>Links</h3>\n<ul>\n")
		for _, l := range meta.Links {
			if l.Href == "" {
				continue
			}
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n",
				html.EscapeString(l.Href), html.EscapeString(l.Text))
		}
		b.WriteString("</ul>\n")
	}
	return xhtmlDoc("Introduction", "../styles/style.css", b.String())
}

// navXHTML renders the EPUB 3 nav document. It lives at the OEBPS
// root, so entry hrefs are used as-is.
func navXHTML(bookTitle string, entries []navEntry) []byte {
	var b strings.Builder
	b.WriteString("<nav epub:type=\"toc\" id=\"toc\">\n<h1>Table of Contents</h1>\n<ol>\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", e.href, html.EscapeString(e.title))
	}
	b.WriteString("</ol>\n</nav>\n")
	return xhtmlDoc(bookTitle, "styles/style.css", b.String())
}

// ncxXML renders the NCX table of contents kept for EPUB 2 readers.
func ncxXML(meta book.Metadata, entries []navEntry) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<ncx version=\"2005-1\" xmlns=\"http://www.daisy.org/z3986/2005/ncx/\">\n")
	b.WriteString("<head>\n")
	fmt.Fprintf(&b, "<meta name=\"dtb:uid\" content=\"%s\"/>\n", html.EscapeString(meta.Identifier))
	b.WriteString("<meta name=\"dtb:depth\" content=\"1\"/>\n")
	b.WriteString("<meta name=\"dtb:totalPageCount\" content=\"0\"/>\n")
	b.WriteString("<meta name=\"dtb:maxPageNumber\" content=\"0\"/>\n")
	b.WriteString("</head>\n")
	fmt.Fprintf(&b, "<docTitle><text>%s</text></docTitle>\n", html.EscapeString(meta.Title))
	fmt.Fprintf(&b, "<docAuthor><text>%s</text></docAuthor>\n", html.EscapeString(meta.Author))
	b.WriteString("<navMap>\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "<navPoint id=\"navpoint-%d\" playOrder=\"%d\">\n", i+1, i+1)
		fmt.Fprintf(&b, "<navLabel><text>%s</text></navLabel>\n", html.EscapeString(e.title))
		fmt.Fprintf(&b, "<content src=\"%s\"/>\n", e.href)
		b.WriteString("</navPoint>\n")
	}
	b.WriteString("</navMap>\n</ncx>\n")
	return []byte(b.String())
}
