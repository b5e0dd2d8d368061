package display

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	rendererOnce sync.Once
	rendererErr  error
	renderer     *glamour.TermRenderer
)

// InitRenderer builds the markdown renderer. Called lazily by
// ShowContentRendered; calling it up front just warms the style.
func InitRenderer() error {
	rendererOnce.Do(func() {
		renderer, rendererErr = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
	})
	return rendererErr
}

// ShowContentRendered prints content as rendered markdown, falling
// back to plain output when the renderer is unavailable.
func ShowContentRendered(content string) {
	_ = InitRenderer()
	if renderer == nil {
		ShowContent(content)
		return
	}

	out, err := renderer.Render(content)
	if err != nil {
		ShowContent(content)
		return
	}
	fmt.Print(out)
}

// ShowContent prints content verbatim.
func ShowContent(content string) {
	fmt.Println(content)
}
