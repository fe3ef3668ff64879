package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const loadingMarkup = `<div class="loading" role="status" aria-busy="true" aria-live="polite">` +
	`<div class="loading-bar"></div><span class="sr-only">Loading…</span></div>`

// Loading is the placeholder shown while a page body is being produced.
func Loading() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, loadingMarkup)
		return err
	})
}
