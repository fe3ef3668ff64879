package tier

import "context"

type dataKey struct{}

// binding distinguishes "provider bound nil" from "no provider".
type binding struct {
	data *Data
}

// WithData returns a context in which every descendant read observes data.
// A nil data is bound as-is. Binding again in a child context shadows the parent
// binding for that subtree only.
func WithData(ctx context.Context, data *Data) context.Context {
	return context.WithValue(ctx, dataKey{}, binding{data: data})
}

// FromContext returns the Data bound by the nearest provider, or ErrNoProvider when none was.
// The returned pointer is the one passed to WithData.
func FromContext(ctx context.Context) (*Data, error) {
	b, ok := ctx.Value(dataKey{}).(binding)
	if !ok {
		return nil, ErrNoProvider
	}
	return b.data, nil
}

// MustFromContext is FromContext for components that must only ever render under a
// provider. It panics with ErrNoProvider otherwise.
func MustFromContext(ctx context.Context) *Data {
	d, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return d
}

// Current returns the bound tier name ("" when the bound value is nil).
func Current(ctx context.Context) string {
	return MustFromContext(ctx).Name()
}

// HasFeature reports whether the bound tier enables feature.
func HasFeature(ctx context.Context, feature string) bool {
	return MustFromContext(ctx).HasFeature(feature)
}

// Limit returns the bound tier's limit for key (0 = none).
func Limit(ctx context.Context, key string) int64 {
	return MustFromContext(ctx).Limit(key)
}
