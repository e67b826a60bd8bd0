package uploads

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/gift"
)

const (
	MaxImageWidth  = 4000
	MaxImageHeight = 4000
	JPEGQuality    = 90
)

// Normalize decodes a reference image, caps it to the maximum dimensions,
// and re-encodes it as JPEG. Decoding also drops any non-image payload and
// most metadata.
func Normalize(r io.Reader) (*bytes.Reader, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = capToSize(img, MaxImageWidth, MaxImageHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// capToSize downscales the image to fit within maxW x maxH, preserving the
// aspect ratio. Images already within bounds pass through untouched.
func capToSize(src image.Image, maxW, maxH int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() <= maxW && bounds.Dy() <= maxH {
		return src
	}

	g := gift.New(gift.ResizeToFit(maxW, maxH, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(bounds))
	g.Draw(dst, src)
	return dst
}
