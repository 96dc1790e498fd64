package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderImage scales img to fit maxW columns by maxH rows and draws it with
// upper-half-block cells: each terminal cell shows two vertically stacked
// pixels, foreground on top, background below. Sampling is nearest neighbor.
func renderImage(img image.Image, maxW, maxH int) string {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return ""
	}

	// one cell is one pixel wide and two pixels tall, which keeps the
	// aspect ratio roughly square on common terminal fonts
	scale := float64(maxW) / float64(srcW)
	if s := float64(2*maxH) / float64(srcH); s < scale {
		scale = s
	}
	cols := int(float64(srcW) * scale)
	pxRows := int(float64(srcH) * scale)
	if cols < 1 {
		cols = 1
	}
	if pxRows < 1 {
		pxRows = 1
	}

	sample := func(cx, py int) color.Color {
		sx := b.Min.X + cx*srcW/cols
		sy := b.Min.Y + py*srcH/pxRows
		return img.At(sx, sy)
	}

	var sb strings.Builder
	for py := 0; py < pxRows; py += 2 {
		if py > 0 {
			sb.WriteByte('\n')
		}
		for cx := 0; cx < cols; cx++ {
			st := lipgloss.NewStyle().Foreground(hexColor(sample(cx, py)))
			if py+1 < pxRows {
				st = st.Background(hexColor(sample(cx, py+1)))
			}
			sb.WriteString(st.Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
