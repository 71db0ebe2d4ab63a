package session

import "fmt"

// Backend names accepted by OpenStore.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Backends returns every supported backend name.
func Backends() []string {
	return []string{BackendMemory, BackendSQLite}
}

// OpenStore creates the store selected by backend.
func OpenStore(backend, sqlitePath string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite:
		if sqlitePath == "" {
			return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		store, err := NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite session store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", backend)
	}
}
