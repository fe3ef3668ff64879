package tier

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	corev1typed "k8s.io/client-go/kubernetes/typed/core/v1"

	"github.com/shelfmark/shelfmark-web/internal/constant"
	"github.com/shelfmark/shelfmark-web/internal/logger"
)

// CatalogLoader reads the tier catalog from a ConfigMap.
type CatalogLoader struct {
	configMapClient corev1typed.ConfigMapInterface
	logger          *logger.Logger
}

func NewCatalogLoader(log *logger.Logger, clientset kubernetes.Interface, namespace string) *CatalogLoader {
	if log == nil {
		log = logger.Production()
	}
	return &CatalogLoader{
		configMapClient: clientset.CoreV1().ConfigMaps(namespace),
		logger:          log,
	}
}

// Load returns the catalog stored in the ConfigMap, or the embedded default when the
// ConfigMap does not exist.
func (l *CatalogLoader) Load(ctx context.Context) (*Catalog, error) {
	cm, err := l.configMapClient.Get(ctx, constant.CatalogConfigMap, metav1.GetOptions{})
	if err != nil {
		if errors.IsNotFound(err) {
			l.logger.Info("Tier catalog ConfigMap not found, using embedded default",
				"configmap", constant.CatalogConfigMap,
			)
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("failed to load tier catalog: %w", err)
	}

	data, exists := cm.Data[constant.CatalogConfigMapKey]
	if !exists {
		l.logger.Error("Catalog key not found in ConfigMap",
			"configmap", constant.CatalogConfigMap,
			"key", constant.CatalogConfigMapKey,
		)
		return nil, fmt.Errorf("tier catalog configuration not found")
	}

	return ParseCatalog([]byte(data))
}
