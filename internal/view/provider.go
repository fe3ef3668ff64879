// Package view holds the server-rendered components of the app.
//
// Tier state reaches components through the render context: TierProviderWrapper binds a
// *tier.Data for the children it renders, and any descendant reads it with the tier package
// helpers instead of receiving it as a parameter.
package view

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/shelfmark/shelfmark-web/internal/tier"
)

// TierProviderWrapper renders the children attached with templ.WithChildren with data bound
// as the current tier. The value is bound as-is, nil included.
func TierProviderWrapper(data *tier.Data) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		return children.Render(tier.WithData(ctx, data), w)
	})
}

// CurrentTier writes the raw name of the bound tier.
func CurrentTier() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(tier.Current(ctx)))
		return err
	})
}
