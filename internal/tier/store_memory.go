package tier

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-memory implementation of the Store interface.
// FOR UNIT TESTS ONLY - data is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	features map[[2]string]bool
	limits   map[[2]string]int64
	usage    map[[2]string]int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		features: make(map[[2]string]bool),
		limits:   make(map[[2]string]int64),
		usage:    make(map[[2]string]int64),
	}
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.profiles[userID]
	if !exists {
		return nil, ErrNotFound
	}
	if p.BenefitExpiresAt != nil {
		t := *p.BenefitExpiresAt
		p.BenefitExpiresAt = &t
	}
	return &p, nil
}

func (s *MemoryStore) UpsertProfile(_ context.Context, profile *Profile) error {
	p := *profile
	if p.BenefitExpiresAt != nil {
		t := *p.BenefitExpiresAt
		p.BenefitExpiresAt = &t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}

func (s *MemoryStore) ListEnabledFeatures(_ context.Context, tier string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	features := []string{}
	for k, enabled := range s.features {
		if k[0] == tier && enabled {
			features = append(features, k[1])
		}
	}
	slices.Sort(features)
	return features, nil
}

func (s *MemoryStore) ListLimits(_ context.Context, tier string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limits := make(map[string]int64)
	for k, v := range s.limits {
		if k[0] == tier {
			limits[k[1]] = v
		}
	}
	return limits, nil
}

func (s *MemoryStore) GetFeature(_ context.Context, tier, feature string) (*FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enabled, exists := s.features[[2]string{tier, feature}]
	if !exists {
		return nil, ErrNotFound
	}
	return &FeatureRow{Tier: tier, Feature: feature, Enabled: enabled}, nil
}

func (s *MemoryStore) GetLimit(_ context.Context, tier, limitKey string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.limits[[2]string{tier, limitKey}]
	if !exists {
		return 0, ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) ListFeatures(_ context.Context) ([]FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]FeatureRow, 0, len(s.features))
	for k, enabled := range s.features {
		result = append(result, FeatureRow{Tier: k[0], Feature: k[1], Enabled: enabled})
	}
	slices.SortFunc(result, func(a, b FeatureRow) int {
		return cmp.Or(cmp.Compare(a.Tier, b.Tier), cmp.Compare(a.Feature, b.Feature))
	})
	return result, nil
}

func (s *MemoryStore) ListAllLimits(_ context.Context) ([]LimitRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]LimitRow, 0, len(s.limits))
	for k, v := range s.limits {
		result = append(result, LimitRow{Tier: k[0], LimitKey: k[1], LimitValue: v})
	}
	slices.SortFunc(result, func(a, b LimitRow) int {
		return cmp.Or(cmp.Compare(a.Tier, b.Tier), cmp.Compare(a.LimitKey, b.LimitKey))
	})
	return result, nil
}

func (s *MemoryStore) SetFeatureEnabled(_ context.Context, tier, feature string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{tier, feature}
	if _, exists := s.features[key]; !exists {
		return ErrNotFound
	}
	s.features[key] = enabled
	return nil
}

func (s *MemoryStore) AddFeature(_ context.Context, tier, feature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{tier, feature}
	if _, exists := s.features[key]; exists {
		return ErrAlreadyExists
	}
	s.features[key] = true
	return nil
}

func (s *MemoryStore) RemoveFeature(_ context.Context, tier, feature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{tier, feature}
	if _, exists := s.features[key]; !exists {
		return ErrNotFound
	}
	delete(s.features, key)
	return nil
}

func (s *MemoryStore) SetLimit(_ context.Context, tier, limitKey string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{tier, limitKey}
	if _, exists := s.limits[key]; !exists {
		return ErrNotFound
	}
	s.limits[key] = value
	return nil
}

func (s *MemoryStore) GetUsage(_ context.Context, userID string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usage := make(map[string]int64)
	for k, v := range s.usage {
		if k[0] == userID {
			usage[k[1]] = v
		}
	}
	return usage, nil
}

func (s *MemoryStore) SetUsage(_ context.Context, userID, limitKey string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[[2]string{userID, limitKey}] = value
	return nil
}

func (s *MemoryStore) Seed(_ context.Context, features []FeatureRow, limits []LimitRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.features) == 0 {
		for _, f := range features {
			s.features[[2]string{f.Tier, f.Feature}] = f.Enabled
		}
	}
	if len(s.limits) == 0 {
		for _, l := range limits {
			s.limits[[2]string{l.Tier, l.LimitKey}] = l.LimitValue
		}
	}
	return nil
}
