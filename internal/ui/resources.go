package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
)

const (
	AppIcon = "template-overlay.png"
)

// Placeholder palette
var (
	placeholderLight = color.RGBA{R: 224, G: 224, B: 224, A: 255}
	placeholderDark  = color.RGBA{R: 196, G: 196, B: 196, A: 255}
	failedColor      = color.RGBA{R: 183, G: 28, B: 28, A: 255}
)

// LoadLogoResource loads the logo from file path
func LoadLogoResource() (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(AppIcon)
}

// PlaceholderImage is the checkerboard shown while a preview loads
func PlaceholderImage(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(size/8, 1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, placeholderLight)
			} else {
				img.Set(x, y, placeholderDark)
			}
		}
	}
	return img
}

// FailedImage is the checkerboard crossed out in red, shown when a preview
// could not be derived
func FailedImage(size int) image.Image {
	img := PlaceholderImage(size).(*image.RGBA)
	for i := 0; i < size; i++ {
		img.Set(i, i, failedColor)
		img.Set(size-1-i, i, failedColor)
	}
	return img
}
