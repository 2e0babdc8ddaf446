package report

import (
	"bytes"
	"errors"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

var ErrBadImage = errors.New("report: unable to decode image")

// NormalizeImage decodes PNG, JPEG or WebP and returns a PNG no wider than
// maxWidth, keeping the aspect ratio.
func NormalizeImage(raw []byte, maxWidth int) ([]byte, image.Point, error) {
	src, err := decodeImageWithWebPFallback(raw)
	if err != nil {
		return nil, image.Point{}, err
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, image.Point{}, ErrBadImage
	}

	var dst image.Image = src
	if maxWidth > 0 && w > maxWidth {
		nh := h * maxWidth / w
		if nh < 1 {
			nh = 1
		}
		canvas := image.NewNRGBA(image.Rect(0, 0, maxWidth, nh))
		xdraw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), src, b, stddraw.Over, nil)
		dst = canvas
		w, h = maxWidth, nh
	}

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, image.Point{}, err
	}
	return out.Bytes(), image.Pt(w, h), nil
}

func decodeImageWithWebPFallback(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err == nil {
		return img, nil
	}
	if decoded, webpErr := webp.Decode(bytes.NewReader(raw)); webpErr == nil {
		return decoded, nil
	}
	return nil, ErrBadImage
}
