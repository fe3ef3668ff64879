package tier_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-web/internal/logger"
	"github.com/shelfmark/shelfmark-web/internal/tier"
)

func TestResolver_EffectiveTier(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Minute)

	tests := []struct {
		name     string
		profile  *tier.Profile
		expected string
	}{
		{
			name:     "no profile defaults to collector",
			expected: tier.Collector,
		},
		{
			name:     "empty membership defaults to collector",
			profile:  &tier.Profile{ID: "u"},
			expected: tier.Collector,
		},
		{
			name:     "stored membership applies",
			profile:  &tier.Profile{ID: "u", MembershipTier: tier.Dealer},
			expected: tier.Dealer,
		},
		{
			name:     "lifetime free is promoted to collector pro",
			profile:  &tier.Profile{ID: "u", MembershipTier: tier.Collector, IsLifetimeFree: true},
			expected: tier.CollectorPro,
		},
		{
			name:     "lifetime free never grants dealer",
			profile:  &tier.Profile{ID: "u", MembershipTier: tier.Dealer, IsLifetimeFree: true},
			expected: tier.CollectorPro,
		},
		{
			name:     "active benefit grants collector pro",
			profile:  &tier.Profile{ID: "u", MembershipTier: tier.Collector, BenefitExpiresAt: &future},
			expected: tier.CollectorPro,
		},
		{
			name:     "expired benefit falls back to membership",
			profile:  &tier.Profile{ID: "u", MembershipTier: tier.Collector, BenefitExpiresAt: &past},
			expected: tier.Collector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tier.NewMemoryStore()
			if tt.profile != nil {
				require.NoError(t, store.UpsertProfile(t.Context(), tt.profile))
			}
			resolver := tier.NewResolver(logger.Nop(), store, tier.WithClock(func() time.Time { return now }))

			got, err := resolver.EffectiveTier(t.Context(), "u")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolver_Lookups(t *testing.T) {
	ctx := t.Context()
	catalog := tier.DefaultCatalog()
	store := tier.NewMemoryStore()
	require.NoError(t, store.Seed(ctx, catalog.DefaultFeatureRows(), catalog.DefaultLimitRows()))
	require.NoError(t, store.UpsertProfile(ctx, &tier.Profile{ID: "pro", MembershipTier: tier.CollectorPro}))
	require.NoError(t, store.UpsertProfile(ctx, &tier.Profile{ID: "admin", IsAdmin: true}))

	resolver := tier.NewResolver(logger.Nop(), store)

	t.Run("HasFeature", func(t *testing.T) {
		ok, err := resolver.HasFeature(ctx, "pro", "image_upload")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = resolver.HasFeature(ctx, "pro", "bulk_operations")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = resolver.HasFeature(ctx, "pro", "teleportation")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Limit", func(t *testing.T) {
		v, err := resolver.Limit(ctx, "pro", "max_books")
		require.NoError(t, err)
		assert.Equal(t, tier.Unlimited, v)

		v, err = resolver.Limit(ctx, "nobody", "max_books")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), v)

		v, err = resolver.Limit(ctx, "pro", "max_shelves")
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)
	})

	t.Run("UserData", func(t *testing.T) {
		data, err := resolver.UserData(ctx, "pro")
		require.NoError(t, err)
		assert.Equal(t, tier.CollectorPro, data.Tier)
		assert.Contains(t, data.Features, "pdf_inserts")
		assert.NotContains(t, data.Features, "dealer_directory")
		assert.Equal(t, tier.Unlimited, data.Limits["max_tags"])

		data, err = resolver.UserData(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, tier.Collector, data.Tier)
		assert.Empty(t, data.Features)
		assert.Equal(t, int64(25), data.Limits["max_tags"])
	})

	t.Run("Usage", func(t *testing.T) {
		require.NoError(t, store.SetUsage(ctx, "pro", "max_books", 240))

		usage, err := resolver.Usage(ctx, "pro")
		require.NoError(t, err)
		assert.Equal(t, int64(240), usage["max_books"])
		assert.Zero(t, usage["max_tags"])
	})

	t.Run("IsAdmin", func(t *testing.T) {
		ok, err := resolver.IsAdmin(ctx, "admin")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = resolver.IsAdmin(ctx, "pro")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = resolver.IsAdmin(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
