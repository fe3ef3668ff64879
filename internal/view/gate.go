package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/shelfmark/shelfmark-web/internal/tier"
)

const pricingURL = "/#pricing"

// FeatureGate renders its children when the bound tier enables feature. Otherwise it renders
// fallback, or an UpgradeHint when fallback is nil.
func FeatureGate(catalog *tier.Catalog, feature string, fallback templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)

		if tier.HasFeature(ctx, feature) {
			return children.Render(ctx, w)
		}
		if fallback != nil {
			return fallback.Render(ctx, w)
		}
		return UpgradeHint(catalog, feature).Render(ctx, w)
	})
}

// UpgradeHint names a locked feature and the cheapest tier that unlocks it.
func UpgradeHint(catalog *tier.Catalog, feature string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		name, price := upgradeTarget(catalog, feature)
		_, err := fmt.Fprintf(w,
			`<div class="upgrade-hint" data-feature="%s"><p class="upgrade-hint-feature">%s</p>`+
				`<p class="upgrade-hint-tier">Available on %s (%s)</p><a href="%s">View plans</a></div>`,
			templ.EscapeString(feature),
			templ.EscapeString(catalog.FeatureLabel(feature)),
			templ.EscapeString(name),
			templ.EscapeString(price),
			pricingURL,
		)
		return err
	})
}

// UpgradeHintInline is the compact hint used inside rows and buttons.
func UpgradeHintInline(catalog *tier.Catalog, feature string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		name, _ := upgradeTarget(catalog, feature)
		_, err := fmt.Fprintf(w, `<span class="upgrade-hint-inline" title="Available on %[1]s">%[1]s</span>`,
			templ.EscapeString(name))
		return err
	})
}

// Features missing from the catalog point at the first paid tier.
func upgradeTarget(catalog *tier.Catalog, feature string) (name, price string) {
	minTier, ok := catalog.MinTier(feature)
	if !ok {
		minTier = tier.CollectorPro
	}
	return catalog.Name(minTier), catalog.Price(minTier)
}

// LimitGate renders its children while current is below the bound tier's limit for key.
// An unlimited limit never blocks.
func LimitGate(catalog *tier.Catalog, key string, current int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)

		limit := tier.Limit(ctx, key)
		if limit == tier.Unlimited || current < limit {
			return children.Render(ctx, w)
		}
		return LimitReached(catalog, key, limit, current).Render(ctx, w)
	})
}

// LimitReached tells the user they hit a limit.
func LimitReached(catalog *tier.Catalog, key string, limit, current int64) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="limit-reached" data-limit="%s"><p>Limit reached</p>`+
				`<p><strong>%s</strong> of <strong>%s</strong> %s</p><a href="%s">View plans</a></div>`,
			templ.EscapeString(key),
			formatCount(current),
			formatCount(limit),
			templ.EscapeString(catalog.LimitLabel(key)),
			pricingURL,
		)
		return err
	})
}
