package tier

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Tier names known to the application.
const (
	Collector    = "collector"
	CollectorPro = "collector_pro"
	Dealer       = "dealer"

	// DefaultTier is assigned to users without a profile or membership.
	DefaultTier = Collector

	// Unlimited is the limit value meaning "no cap".
	Unlimited int64 = -1
)

var (
	// ErrNoProvider is a usage error: a tier read happened outside any provider scope.
	ErrNoProvider = errors.New("tier: read outside of a tier provider")
	// ErrNotFound is returned when a profile, feature or limit row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when inserting a feature row that already exists.
	ErrAlreadyExists = errors.New("already exists")
)

// Data is the tier state computed server-side for one user and handed to a render tree.
// It must not be modified after it is bound to a provider.
type Data struct {
	Tier     string           `json:"tier"`
	Features []string         `json:"features"`
	Limits   map[string]int64 `json:"limits"`
}

// HasFeature reports whether feature is enabled. A nil Data has no features.
func (d *Data) HasFeature(feature string) bool {
	if d == nil {
		return false
	}
	return slices.Contains(d.Features, feature)
}

// Limit returns the limit for key, 0 when unset or when d is nil.
func (d *Data) Limit(key string) int64 {
	if d == nil {
		return 0
	}
	return d.Limits[key]
}

// Name returns the tier name, "" when d is nil.
func (d *Data) Name() string {
	if d == nil {
		return ""
	}
	return d.Tier
}

// Profile is the per-user membership record tier resolution is based on.
type Profile struct {
	ID               string     `json:"id"`
	MembershipTier   string     `json:"membershipTier"`
	IsLifetimeFree   bool       `json:"isLifetimeFree"`
	BenefitExpiresAt *time.Time `json:"benefitExpiresAt,omitempty"`
	IsAdmin          bool       `json:"isAdmin"`
}

// FeatureRow is one entry of the tier_features table.
type FeatureRow struct {
	Tier    string `json:"tier"`
	Feature string `json:"feature"`
	Enabled bool   `json:"enabled"`
}

// LimitRow is one entry of the tier_limits table.
type LimitRow struct {
	Tier       string `json:"tier"`
	LimitKey   string `json:"limitKey"`
	LimitValue int64  `json:"limitValue"`
}

// UnknownTierError indicates a tier name that is not part of the catalog.
type UnknownTierError struct {
	Tier string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("tier %s is not defined in the catalog", e.Tier)
}
