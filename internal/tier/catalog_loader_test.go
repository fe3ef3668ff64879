package tier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/shelfmark/shelfmark-web/internal/constant"
	"github.com/shelfmark/shelfmark-web/internal/logger"
	"github.com/shelfmark/shelfmark-web/internal/tier"
)

func TestCatalogLoader_Load(t *testing.T) {
	ctx := t.Context()

	t.Run("reads catalog from ConfigMap", func(t *testing.T) {
		configMap := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      constant.CatalogConfigMap,
				Namespace: "test-namespace",
			},
			Data: map[string]string{
				constant.CatalogConfigMapKey: `
tiers:
- name: collector
  label: Collector
- name: dealer
  label: Dealer
  price: "€39/mo"
features:
- key: bulk_operations
  label: Bulk Operations
  minTier: dealer
`,
			},
		}
		clientset := fake.NewSimpleClientset([]runtime.Object{configMap}...)
		loader := tier.NewCatalogLoader(logger.Nop(), clientset, "test-namespace")

		c, err := loader.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, c.Tiers, 2)
		assert.Equal(t, "€39/mo", c.Price(tier.Dealer))
		assert.False(t, c.Has(tier.CollectorPro))
	})

	t.Run("missing ConfigMap falls back to embedded catalog", func(t *testing.T) {
		clientset := fake.NewSimpleClientset()
		loader := tier.NewCatalogLoader(logger.Nop(), clientset, "test-namespace")

		c, err := loader.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, tier.DefaultCatalog(), c)
	})

	t.Run("missing key is an error", func(t *testing.T) {
		configMap := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      constant.CatalogConfigMap,
				Namespace: "test-namespace",
			},
			Data: map[string]string{"other": "value"},
		}
		clientset := fake.NewSimpleClientset([]runtime.Object{configMap}...)
		loader := tier.NewCatalogLoader(logger.Nop(), clientset, "test-namespace")

		_, err := loader.Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("invalid catalog is an error", func(t *testing.T) {
		configMap := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      constant.CatalogConfigMap,
				Namespace: "test-namespace",
			},
			Data: map[string]string{constant.CatalogConfigMapKey: "tiers: []"},
		}
		clientset := fake.NewSimpleClientset([]runtime.Object{configMap}...)
		loader := tier.NewCatalogLoader(logger.Nop(), clientset, "test-namespace")

		_, err := loader.Load(ctx)
		assert.Error(t, err)
	})
}
