// Package logo draws the art shown while a feed has no entries yet.
package logo

import (
	"strings"
	"unicode"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/carousel/internal/tui/styles"
	uv "github.com/charmbracelet/ultraviolet"
)

var Primary = heredoc.Doc(`
       ▄▄▄▄▄▄▄▄▄▄▄▄
    ▄██▀▀        ▀▀██▄
   ██  ▄▄▄  ▄▄▄  ▄▄▄  ██
   ██  ███  ███  ███  ██
    ▀██▄▄        ▄▄██▀
       ▀▀▀▀▀▀▀▀▀▀▀▀
`)

type Logo struct {
	face string
}

func Standard() *Logo {
	return &Logo{
		face: strings.TrimRight(Primary, "\n"),
	}
}

// Size returns the width and height of the art in cells.
func (l *Logo) Size() (int, int) {
	lines := strings.Split(l.face, "\n")
	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}
	return width, len(lines)
}

func (l *Logo) Draw(scr uv.Screen, area uv.Rectangle) {
	for y, line := range strings.Split(l.face, "\n") {
		if area.Min.Y+y >= area.Max.Y {
			return
		}
		x := 0
		for _, r := range line {
			if area.Min.X+x >= area.Max.X {
				break
			}
			if !unicode.IsSpace(r) {
				scr.SetCell(area.Min.X+x, area.Min.Y+y, &uv.Cell{
					Content: string(r),
					Width:   1,
				})
			}
			x++
		}
	}
}

// Render draws the logo centered in a width x height area.
func (l *Logo) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	w, h := l.Size()
	area := uv.Rect(max((width-w)/2, 0), max((height-h)/2, 0), w, h)
	scr := uv.NewScreenBuffer(width, height)
	l.Draw(scr, area.Intersect(uv.Rect(0, 0, width, height)))
	return styles.CurrentTheme().S().Title.Render(scr.Render())
}
