package export

import (
	"fmt"
	"image/png"
	"math"
	"os"

	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/piwi3910/SlabLayout/internal/render"
)

// DefaultPNGWidth is the image width used when none is given.
const DefaultPNGWidth = 1600

// ExportPNG writes a picture of the sheet and its pieces, width pixels wide
// with the height following the sheet's aspect ratio.
func ExportPNG(path string, l model.Layout, width int) error {
	if err := checkMaterial(l); err != nil {
		return err
	}
	if width <= 0 {
		width = DefaultPNGWidth
	}
	inner := float64(width) - 2*render.Padding
	height := int(math.Ceil(inner*l.Material.Height/l.Material.Width + 2*render.Padding))

	img, err := render.Image(render.Scene{Material: l.Material, Shapes: l.Shapes}, width, height)
	if err != nil {
		return fmt.Errorf("render layout: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
