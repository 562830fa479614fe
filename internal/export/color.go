package export

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// rgb is an 8-bit colour as fpdf expects it.
type rgb struct {
	R, G, B int
}

// hexRGB parses a #rrggbb colour, returning fallback when hex is
// empty or malformed.
func hexRGB(hex string, fallback rgb) rgb {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return rgb{R: int(r), G: int(g), B: int(b)}
}

var (
	defaultFill   = rgb{R: 160, G: 196, B: 255}
	defaultBorder = rgb{}
)
