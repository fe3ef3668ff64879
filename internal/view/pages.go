package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/shelfmark/shelfmark-web/internal/tier"
)

// ContentPath is fetched by the shell once it has loaded.
const ContentPath = "/app/content"

// htmxConfig makes htmx swap server error fragments into the page instead of dropping them.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},` +
	`{"code":"5..","swap":true,"error":true},{"code":"...","swap":false}]}`

// action is a dashboard shortcut. It is gated by limit when set, otherwise by feature.
type action struct {
	label   string
	href    string
	limit   string
	feature string
}

var dashboardActions = []action{
	{label: "Add book", href: "/books/new", limit: "max_books"},
	{label: "New tag", href: "/settings/tags", limit: "max_tags"},
	{label: "Bulk edit", href: "/books/bulk", feature: "bulk_operations"},
	{label: "Export catalog", href: "/catalog/export", feature: "catalog_generator"},
}

// AppShell is the full HTML document. Its main element shows Loading until the body fetched
// from ContentPath replaces it.
func AppShell(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
				`<meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title>`+
				`<meta name="htmx-config" content='%s'>`+
				`<script src="https://unpkg.com/htmx.org@2.0.4" defer></script></head><body>`+
				`<main id="main" hx-get="%s" hx-trigger="load" hx-swap="innerHTML">`,
			templ.EscapeString(title), htmxConfig, ContentPath,
		); err != nil {
			return err
		}
		if err := Loading().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// TierBadge shows the display name of the bound tier.
func TierBadge(catalog *tier.Catalog) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		name := tier.Current(ctx)
		if name == "" {
			_, err := io.WriteString(w, `<span class="tier-badge" data-tier="">No plan</span>`)
			return err
		}
		_, err := fmt.Fprintf(w, `<span class="tier-badge" data-tier="%s">%s</span>`,
			templ.EscapeString(name), templ.EscapeString(catalog.Name(name)))
		return err
	})
}

// LimitsTable lists every catalog limit with the bound tier's value.
func LimitsTable(catalog *tier.Catalog) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<table class="tier-limits"><tbody>`); err != nil {
			return err
		}
		for _, l := range catalog.Limits {
			if _, err := fmt.Fprintf(w, `<tr data-limit="%s"><th>%s</th><td>%s</td></tr>`,
				templ.EscapeString(l.Key),
				templ.EscapeString(catalog.LimitLabel(l.Key)),
				templ.EscapeString(formatLimit(l.Key, tier.Limit(ctx, l.Key))),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

// Dashboard is the app body: the tier badge, the gated shortcuts, one gate per catalog feature
// and the limits. usage holds the user's current count per limit key and may be nil.
// It must be rendered under a TierProviderWrapper.
func Dashboard(catalog *tier.Catalog, usage map[string]int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="dashboard"><header>`); err != nil {
			return err
		}
		if err := TierBadge(catalog).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</header>`); err != nil {
			return err
		}
		if err := Actions(catalog, usage).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<ul class="features">`); err != nil {
			return err
		}
		for _, f := range catalog.Features {
			if _, err := fmt.Fprintf(w, `<li data-feature="%s">`, templ.EscapeString(f.Key)); err != nil {
				return err
			}
			gate := FeatureGate(catalog, f.Key, nil)
			if err := gate.Render(templ.WithChildren(ctx, featureUnlocked(catalog, f.Key)), w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `</li>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}
		if err := LimitsTable(catalog).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// Actions renders the dashboard shortcuts the catalog knows about. A shortcut over its limit
// shows LimitReached; one whose feature is locked shows an inline upgrade hint.
func Actions(catalog *tier.Catalog, usage map[string]int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav class="actions">`); err != nil {
			return err
		}
		for _, a := range dashboardActions {
			var gate templ.Component
			switch {
			case a.limit != "" && catalog.HasLimit(a.limit):
				gate = LimitGate(catalog, a.limit, usage[a.limit])
			case a.feature != "":
				if _, ok := catalog.MinTier(a.feature); !ok {
					continue
				}
				gate = FeatureGate(catalog, a.feature, UpgradeHintInline(catalog, a.feature))
			default:
				continue
			}
			if err := gate.Render(templ.WithChildren(ctx, actionLink(a)), w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</nav>`)
		return err
	})
}

func actionLink(a action) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<a class="action" href="%s">%s</a>`,
			templ.EscapeString(a.href), templ.EscapeString(a.label))
		return err
	})
}

// ErrorNotice is the fragment swapped into the page when its body cannot be produced.
func ErrorNotice(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="error-notice" role="alert"><p>%s</p>`+
				`<button type="button" hx-get="%s" hx-target="#main">Try again</button></div>`,
			templ.EscapeString(message), ContentPath)
		return err
	})
}

func featureUnlocked(catalog *tier.Catalog, feature string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span class="feature-unlocked">%s</span>`,
			templ.EscapeString(catalog.FeatureLabel(feature)))
		return err
	})
}
