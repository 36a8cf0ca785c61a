package render

import (
	"fmt"
	"image/color"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// Palette holds the colors a scene is drawn with.
type Palette struct {
	Background color.RGBA
	Edge       color.RGBA
	EdgeFocus  color.RGBA
	Label      color.RGBA
	Selection  color.RGBA
	Hover      color.RGBA
	Nodes      map[graphmodel.NodeType]color.RGBA
}

// DefaultPalette is a dark theme with one hue per entity type.
func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{0x1e, 0x1e, 0x2e, 0xff},
		Edge:       color.RGBA{0x6b, 0x80, 0xbf, 0xff},
		EdgeFocus:  color.RGBA{0xbd, 0x93, 0xf9, 0xff},
		Label:      color.RGBA{0xf8, 0xf8, 0xf2, 0xff},
		Selection:  color.RGBA{0xf1, 0xfa, 0x8c, 0xff},
		Hover:      color.RGBA{0x8b, 0xe9, 0xfd, 0xff},
		Nodes: map[graphmodel.NodeType]color.RGBA{
			graphmodel.TypePerson:       {0x50, 0xfa, 0x7b, 0xff},
			graphmodel.TypeOrganization: {0x8b, 0xe9, 0xfd, 0xff},
			graphmodel.TypeEvent:        {0xff, 0xb8, 0x6c, 0xff},
			graphmodel.TypeSubject:      {0xbd, 0x93, 0xf9, 0xff},
			graphmodel.TypeLocation:     {0xff, 0x79, 0xc6, 0xff},
			graphmodel.TypeUnknown:      {0x62, 0x72, 0xa4, 0xff},
		},
	}
}

// NodeColor returns the color for t, falling back to the unknown type.
func (p Palette) NodeColor(t graphmodel.NodeType) color.RGBA {
	if c, ok := p.Nodes[t]; ok {
		return c
	}
	return p.Nodes[graphmodel.TypeUnknown]
}

// withAlpha returns c with its alpha scaled by opacity in [0, 1].
func withAlpha(c color.RGBA, opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

// blend mixes c over bg by c's alpha and returns an opaque color. Backends
// without transparency use it.
func blend(c, bg color.RGBA) color.RGBA {
	a := float64(c.A) / 255
	mix := func(f, b uint8) uint8 {
		return uint8(float64(f)*a + float64(b)*(1-a) + 0.5)
	}
	return color.RGBA{mix(c.R, bg.R), mix(c.G, bg.G), mix(c.B, bg.B), 0xff}
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
