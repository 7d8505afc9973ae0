package pipeline

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/sillysack69/Zetro-Translations/internal/book"
)

// coverJPEGQuality matches the quality the sites' own full-size covers
// are served at.
const coverJPEGQuality = 95

// prepareCover decodes a downloaded cover image and re-encodes it as
// JPEG so PNG and paletted sources render consistently across readers.
func prepareCover(raw []byte) (*book.CoverImage, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode cover image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(coverJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode cover image: %w", err)
	}

	return &book.CoverImage{
		Data:      buf.Bytes(),
		MediaType: "image/jpeg",
	}, nil
}
