package logo

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestLogoRender(t *testing.T) {
	t.Parallel()

	l := Standard()
	w, h := l.Size()
	assert.Equal(t, 6, h)

	view := ansi.Strip(l.Render(w+4, h+2))
	lines := strings.Split(view, "\n")
	assert.Contains(t, view, "███")
	assert.Empty(t, strings.TrimSpace(lines[0]), "centered vertically")
}

func TestLogoRenderEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Standard().Render(0, 10))
}
