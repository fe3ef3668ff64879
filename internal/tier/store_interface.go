package tier

import "context"

// Store persists user profiles, per-user usage and the tier_features / tier_limits tables.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	UpsertProfile(ctx context.Context, profile *Profile) error

	// ListEnabledFeatures returns the enabled features of a tier, sorted by name.
	ListEnabledFeatures(ctx context.Context, tier string) ([]string, error)

	ListLimits(ctx context.Context, tier string) (map[string]int64, error)

	GetFeature(ctx context.Context, tier, feature string) (*FeatureRow, error)

	GetLimit(ctx context.Context, tier, limitKey string) (int64, error)

	// ListFeatures returns every row ordered by tier then feature.
	ListFeatures(ctx context.Context) ([]FeatureRow, error)

	// ListAllLimits returns every row ordered by tier then limit key.
	ListAllLimits(ctx context.Context) ([]LimitRow, error)

	SetFeatureEnabled(ctx context.Context, tier, feature string, enabled bool) error

	AddFeature(ctx context.Context, tier, feature string) error

	RemoveFeature(ctx context.Context, tier, feature string) error

	SetLimit(ctx context.Context, tier, limitKey string, value int64) error

	// GetUsage returns the user's current count per limit key. Keys never recorded are absent.
	GetUsage(ctx context.Context, userID string) (map[string]int64, error)

	// SetUsage records the user's current count for limitKey, replacing any previous value.
	SetUsage(ctx context.Context, userID, limitKey string, value int64) error

	// Seed inserts the given rows into tables that are still empty.
	Seed(ctx context.Context, features []FeatureRow, limits []LimitRow) error

	Close() error
}
