// Package preprocess bounds image payloads before they are base64-encoded
// into a model request.
package preprocess

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Downscale resizes an image so neither dimension exceeds maxDim, preserving
// aspect ratio. Images already within bounds, and non-image content such as
// PDFs, are returned unchanged.
func Downscale(data []byte, contentType string, maxDim int) ([]byte, error) {
	var format imaging.Format
	switch contentType {
	case "image/png":
		format = imaging.PNG
	case "image/jpeg":
		format = imaging.JPEG
	default:
		return data, nil
	}

	if maxDim <= 0 {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return data, nil
	}

	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return nil, fmt.Errorf("encoding resized image: %w", err)
	}
	return buf.Bytes(), nil
}
