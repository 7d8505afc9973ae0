package epub

import (
	"encoding/xml"
	"fmt"
)

// Marshal-direction OPF structures. Namespace prefixes are written
// literally; the xmlns:dc declaration on <metadata> makes them valid.

type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Xmlns            string      `xml:"xmlns,attr"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XmlnsDC     string        `xml:"xmlns:dc,attr"`
	Identifier  opfIdentifier `xml:"dc:identifier"`
	Titles      []string      `xml:"dc:title"`
	Languages   []string      `xml:"dc:language"`
	Creators    []opfCreator  `xml:"dc:creator"`
	Description string        `xml:"dc:description,omitempty"`
	Subjects    []string      `xml:"dc:subject,omitempty"`
	Metas       []opfMeta     `xml:"meta"`
}

type opfIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

type opfCreator struct {
	ID    string `xml:"id,attr,omitempty"`
	Value string `xml:",chardata"`
}

// opfMeta covers both EPUB 3 property metas and the EPUB 2
// name/content form used for cover discovery by older readers.
type opfMeta struct {
	Property string `xml:"property,attr,omitempty"`
	Refines  string `xml:"refines,attr,omitempty"`
	Scheme   string `xml:"scheme,attr,omitempty"`
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// renderOPF serializes the builder's metadata, manifest, and spine into
// the package document.
func (b *builder) renderOPF() ([]byte, error) {
	pkg := opfPackage{
		Xmlns:            "http://www.idpf.org/2007/opf",
		Version:          "3.0",
		UniqueIdentifier: "book-id",
		Metadata: opfMetadata{
			XmlnsDC:     "http://purl.org/dc/elements/1.1/",
			Identifier:  opfIdentifier{ID: "book-id", Value: b.meta.Identifier},
			Titles:      []string{b.meta.Title},
			Languages:   []string{b.meta.Language},
			Description: b.meta.Synopsis,
			Subjects:    b.meta.Subjects,
		},
		Spine: opfSpine{Toc: "ncx"},
	}

	pkg.Metadata.Creators = append(pkg.Metadata.Creators, opfCreator{ID: "author", Value: b.meta.Author})
	pkg.Metadata.Metas = append(pkg.Metadata.Metas, opfMeta{
		Property: "role", Refines: "#author", Scheme: "marc:relators", Value: "aut",
	})
	if b.meta.Translator != "" {
		pkg.Metadata.Creators = append(pkg.Metadata.Creators, opfCreator{ID: "translator", Value: b.meta.Translator})
		pkg.Metadata.Metas = append(pkg.Metadata.Metas, opfMeta{
			Property: "role", Refines: "#translator", Scheme: "marc:relators", Value: "trl",
		})
	}
	if b.meta.AlternateTitle != "" {
		pkg.Metadata.Metas = append(pkg.Metadata.Metas, opfMeta{
			Property: "dcterms:alternative", Value: b.meta.AlternateTitle,
		})
	}
	pkg.Metadata.Metas = append(pkg.Metadata.Metas, opfMeta{
		Property: "dcterms:modified",
		Value:    b.meta.Modified.UTC().Format("2006-01-02T15:04:05Z"),
	})

	for _, res := range b.manifest {
		pkg.Manifest.Items = append(pkg.Manifest.Items, opfItem{
			ID:         res.id,
			Href:       res.href,
			MediaType:  res.mediaType,
			Properties: res.properties,
		})
		if res.id == "cover-image" {
			// EPUB 2 reader compatibility.
			pkg.Metadata.Metas = append(pkg.Metadata.Metas, opfMeta{Name: "cover", Content: res.id})
		}
	}

	for _, id := range b.spine {
		pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, opfItemRef{IDRef: id})
	}

	data, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal OPF: %w", err)
	}

	return append([]byte(xml.Header), data...), nil
}
