package thumbnail

import (
	"fmt"
	"image"
	"log"
	"math"

	"golang.org/x/image/draw"
)

// Preview sizing constants
const (
	DefaultSize        = 100
	MaxSourceDimension = 16384 // larger sources are drawn anyway, with a warning
)

// Derive scales src into a size×size square. The longer side maps to size,
// aspect ratio is kept, the result is centered on both axes and the rest
// stays transparent. Nearest-neighbour sampling keeps pixel art crisp.
func Derive(src image.Image, size int) (dst *image.RGBA, err error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidDimension)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: target size %d", ErrInvalidDimension, size)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, w, h)
	}
	if w > MaxSourceDimension || h > MaxSourceDimension {
		log.Printf("Warning: source image %dx%d exceeds %d, drawing anyway", w, h, MaxSourceDimension)
	}

	target := FitRect(w, h, size)
	if target.Empty() {
		return nil, fmt.Errorf("%w: scaled to %v", ErrInvalidDimension, target)
	}

	defer func() {
		if r := recover(); r != nil {
			dst = nil
			err = fmt.Errorf("%w: %v", ErrDrawFailed, r)
		}
	}()

	dst = image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, target, src, bounds, draw.Over, nil)
	return dst, nil
}

// FitRect returns the centered destination rectangle for a w×h source
// inside a size×size square.
func FitRect(w, h, size int) image.Rectangle {
	scale := float64(size) / float64(max(w, h))
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return image.Rectangle{}
	}

	dw := int(math.Round(float64(w) * scale))
	dh := int(math.Round(float64(h) * scale))
	dw = min(max(dw, 1), size)
	dh = min(max(dh, 1), size)

	x := (size - dw) / 2
	y := (size - dh) / 2
	return image.Rect(x, y, x+dw, y+dh)
}

// CountOpaque returns the number of pixels with non-zero alpha, the pixel
// count a template contributes when placed.
func CountOpaque(img image.Image) int {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				n++
			}
		}
	}
	return n
}
