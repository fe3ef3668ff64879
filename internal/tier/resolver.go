package tier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shelfmark/shelfmark-web/internal/logger"
)

// Resolver computes a user's effective tier and the data handed to render trees.
type Resolver struct {
	store  Store
	logger *logger.Logger
	now    func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the time source used to evaluate benefit expiry.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

func NewResolver(log *logger.Logger, store Store, opts ...ResolverOption) *Resolver {
	if log == nil {
		log = logger.Production()
	}
	r := &Resolver{
		store:  store,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EffectiveTier resolves the tier a user is entitled to right now.
//
// Lifetime-free accounts are promoted to collector_pro (never dealer), as are accounts with
// an unexpired benefit trial. Otherwise the stored membership applies, defaulting to collector.
func (r *Resolver) EffectiveTier(ctx context.Context, userID string) (string, error) {
	profile, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Debug("No profile found, defaulting tier",
				"user", userID,
				"tier", DefaultTier,
			)
			return DefaultTier, nil
		}
		return "", fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}

	return effectiveTier(profile, r.now()), nil
}

func effectiveTier(p *Profile, now time.Time) string {
	if p.IsLifetimeFree {
		return CollectorPro
	}
	if p.BenefitExpiresAt != nil && p.BenefitExpiresAt.After(now) {
		return CollectorPro
	}
	if p.MembershipTier == "" {
		return DefaultTier
	}
	return p.MembershipTier
}

// HasFeature reports whether the user's effective tier has feature enabled.
func (r *Resolver) HasFeature(ctx context.Context, userID, feature string) (bool, error) {
	t, err := r.EffectiveTier(ctx, userID)
	if err != nil {
		return false, err
	}

	row, err := r.store.GetFeature(ctx, t, feature)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check feature %s for tier %s: %w", feature, t, err)
	}
	return row.Enabled, nil
}

// Limit returns the user's limit for limitKey: -1 unlimited, 0 none, otherwise the cap.
func (r *Resolver) Limit(ctx context.Context, userID, limitKey string) (int64, error) {
	t, err := r.EffectiveTier(ctx, userID)
	if err != nil {
		return 0, err
	}

	v, err := r.store.GetLimit(ctx, t, limitKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get limit %s for tier %s: %w", limitKey, t, err)
	}
	return v, nil
}

// UserData gathers the effective tier, enabled features and limits of a user in one call,
// ready to be bound to a render tree with WithData.
func (r *Resolver) UserData(ctx context.Context, userID string) (*Data, error) {
	t, err := r.EffectiveTier(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		features []string
		limits   map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := r.store.ListEnabledFeatures(gctx, t)
		if err != nil {
			return err
		}
		features = f
		return nil
	})
	g.Go(func() error {
		l, err := r.store.ListLimits(gctx, t)
		if err != nil {
			return err
		}
		limits = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tier data for %s: %w", userID, err)
	}

	return &Data{
		Tier:     t,
		Features: features,
		Limits:   limits,
	}, nil
}

// Usage returns the user's current count per limit key; unrecorded keys read as zero.
func (r *Resolver) Usage(ctx context.Context, userID string) (map[string]int64, error) {
	usage, err := r.store.GetUsage(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage for %s: %w", userID, err)
	}
	return usage, nil
}

// IsAdmin reports whether the user's profile carries the admin flag.
func (r *Resolver) IsAdmin(ctx context.Context, userID string) (bool, error) {
	p, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.IsAdmin, nil
}
