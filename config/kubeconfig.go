// Package config loads cluster connection parameters from kubeconfig
// files: the cluster URL, TLS trust material and client credentials
// (certificate/key pair or bearer token). It hands the rest of the
// system a ready-to-use rest.Config; nothing else ever re-parses the
// file.
package config

import (
	"fmt"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// FromKubeconfig loads the named context from a kubeconfig file. An
// empty path falls back to $KUBECONFIG and then the default location;
// an empty context uses the file's current-context.
func FromKubeconfig(path, context string) (*rest.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path != "" {
		rules.ExplicitPath = path
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: context}

	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return cfg, nil
}

// FromKubeconfigBytes loads the named context from in-memory kubeconfig
// content.
func FromKubeconfigBytes(data []byte, context string) (*rest.Config, error) {
	apiConfig, err := clientcmd.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kubeconfig: %w", err)
	}

	cfg, err := clientcmd.NewNonInteractiveClientConfig(*apiConfig, context, &clientcmd.ConfigOverrides{}, nil).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return cfg, nil
}
