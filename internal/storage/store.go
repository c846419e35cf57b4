package storage

import (
	"errors"
)

// ErrNotFound is returned when a key has no value in a namespace.
var ErrNotFound = errors.New("storage: key not found")

// Store is the narrow key-value contract the services persist through:
// baselines, preferences, forecasts and the risk-history fallback all
// go through namespaced get/set/list. Concrete backends are selected
// at construction time, never probed per call.
type Store interface {
	Get(namespace, key string) ([]byte, error)
	Set(namespace, key string, value []byte) error
	Delete(namespace, key string) error
	List(namespace, prefix string) ([]string, error)
	Close() error
}

// Namespaces used across the services.
const (
	NamespaceBaselines   = "baselines"
	NamespacePreferences = "preferences"
	NamespaceFeedback    = "feedback"
	NamespaceForecasts   = "forecasts"
	NamespaceRiskHistory = "risk_history"
)
