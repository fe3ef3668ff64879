package config

import (
	"fmt"
	"os"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// ClusterConfig bundles the Kubernetes clients the service needs.
type ClusterConfig struct {
	ClientSet kubernetes.Interface
}

// NewClusterConfig builds clients from the in-cluster service account, falling back to
// $KUBECONFIG for local runs.
func NewClusterConfig() (*ClusterConfig, error) {
	restConfig, err := rest.InClusterConfig()
	if err != nil {
		kubeconfig := os.Getenv("KUBECONFIG")
		if kubeconfig == "" {
			return nil, fmt.Errorf("not running in a cluster and KUBECONFIG is unset: %w", err)
		}
		restConfig, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfig, err)
		}
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &ClusterConfig{ClientSet: clientset}, nil
}
