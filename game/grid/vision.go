package grid

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Colors used by the diagnostic vision export.
var (
	BackgroundColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	WallColor       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	GoalColor       = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Vision renders the wall and goal layers into an RGB image, one pixel per tile.
// Goal color wins over wall color.
func Vision(m *Matrices) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			c := Coordinate{X: x, Y: y}
			switch {
			case m.IsGoal(c):
				img.SetRGBA(x, y, GoalColor)
			case m.IsWall(c):
				img.SetRGBA(x, y, WallColor)
			default:
				img.SetRGBA(x, y, BackgroundColor)
			}
		}
	}
	return img
}

// VisionRGB returns the vision image as a flat row-major RGB buffer (3 bytes per tile).
func VisionRGB(m *Matrices) []byte {
	img := Vision(m)
	buf := make([]byte, 0, m.width*m.height*3)
	for i := 0; i < len(img.Pix); i += 4 {
		buf = append(buf, img.Pix[i], img.Pix[i+1], img.Pix[i+2])
	}
	return buf
}

// WriteVisionPNG encodes the vision image as PNG into w.
func WriteVisionPNG(w io.Writer, m *Matrices) error {
	if err := png.Encode(w, Vision(m)); err != nil {
		return fmt.Errorf("encoding vision map: %w", err)
	}
	return nil
}
