package fixtures

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sfake "k8s.io/client-go/kubernetes/fake"

	"github.com/shelfmark/shelfmark-web/internal/constant"
	"github.com/shelfmark/shelfmark-web/internal/handlers"
	"github.com/shelfmark/shelfmark-web/internal/logger"
	"github.com/shelfmark/shelfmark-web/internal/metrics"
	"github.com/shelfmark/shelfmark-web/internal/tier"
	"github.com/shelfmark/shelfmark-web/internal/token"
)

const (
	TestNamespace = "shelfmark-test"
	TestSecret    = "test-jwt-secret"
)

// TestServerConfig holds configuration for test server setup.
type TestServerConfig struct {
	// WithCatalogConfigMap loads the tier catalog from a fake ConfigMap instead of the embedded one.
	WithCatalogConfigMap bool
	Profiles             []tier.Profile
	Objects              []runtime.Object
	TestNamespace        string
}

// TestComponents holds common test components.
type TestComponents struct {
	Store     *tier.MemoryStore
	Catalog   *tier.Catalog
	Resolver  *tier.Resolver
	Registry  *prometheus.Registry
	Clientset *k8sfake.Clientset
}

// SetupTestServer creates a router with every route registered over a seeded in-memory store.
func SetupTestServer(t *testing.T, config TestServerConfig) (*gin.Engine, *TestComponents) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if config.TestNamespace == "" {
		config.TestNamespace = TestNamespace
	}

	objects := config.Objects
	if config.WithCatalogConfigMap {
		objects = append(objects, CreateCatalogConfigMap(config.TestNamespace))
	}
	clientset := k8sfake.NewClientset(objects...)

	ctx := context.Background()
	log := logger.Nop()

	catalog, err := tier.NewCatalogLoader(log, clientset, config.TestNamespace).Load(ctx)
	if err != nil {
		t.Fatalf("failed to load test catalog: %v", err)
	}

	store := tier.NewMemoryStore()
	if err := store.Seed(ctx, catalog.DefaultFeatureRows(), catalog.DefaultLimitRows()); err != nil {
		t.Fatalf("failed to seed test store: %v", err)
	}
	for i := range config.Profiles {
		if err := store.UpsertProfile(ctx, &config.Profiles[i]); err != nil {
			t.Fatalf("failed to create test profile: %v", err)
		}
	}

	registry := prometheus.NewRegistry()
	resolver := tier.NewResolver(log, store)

	router := gin.New()
	handlers.RegisterRoutes(router, handlers.Dependencies{
		Logger:   log,
		Store:    store,
		Resolver: resolver,
		Catalog:  catalog,
		Reviewer: token.NewReviewer(TestSecret),
		Metrics:  metrics.New(registry),
	})

	return router, &TestComponents{
		Store:     store,
		Catalog:   catalog,
		Resolver:  resolver,
		Registry:  registry,
		Clientset: clientset,
	}
}

// CreateCatalogConfigMap returns a catalog ConfigMap with a cheaper dealer tier than the
// embedded default, so tests can tell which catalog was loaded.
func CreateCatalogConfigMap(namespace string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      constant.CatalogConfigMap,
			Namespace: namespace,
		},
		Data: map[string]string{
			constant.CatalogConfigMapKey: `
tiers:
- name: collector
  label: Collector
  price: Free
- name: collector_pro
  label: Collector Pro
  price: "€9.99/mo"
- name: dealer
  label: Dealer
  price: "€39/mo"
features:
- key: image_upload
  label: Image Uploads
  minTier: collector_pro
- key: bulk_operations
  label: Bulk Operations
  minTier: dealer
limits:
- key: max_books
  label: books
  defaults:
    collector: 500
    collector_pro: -1
    dealer: -1
`,
		},
	}
}

// SessionToken signs a one hour session token for userID.
func SessionToken(t *testing.T, userID string) string {
	t.Helper()
	signed, err := token.NewSessionToken(TestSecret, userID, userID+"@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to sign session token: %v", err)
	}
	return signed
}

// AuthorizedRequest builds a request carrying a bearer session token for userID.
func AuthorizedRequest(t *testing.T, method, path, userID string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, path, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+SessionToken(t, userID))
	return req
}
