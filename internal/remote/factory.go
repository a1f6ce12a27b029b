package remote

import (
	"fmt"
	"time"
)

const (
	ServiceKindHTTP   = "http"
	ServiceKindMemory = "memory"
)

// NewServiceFromConfig creates a Service based on the configured kind.
// "memory" keeps everything in-process; "http" (default) talks to the real
// content store.
func NewServiceFromConfig(kind, baseURL, apiKey string, timeout time.Duration) (Service, error) {
	switch kind {
	case ServiceKindMemory:
		return NewMemoryService(), nil
	case ServiceKindHTTP, "":
		if baseURL == "" {
			return nil, fmt.Errorf("remote base url is required for the %s service", ServiceKindHTTP)
		}
		return NewHTTPService(baseURL, apiKey, timeout), nil
	default:
		return nil, fmt.Errorf("unknown remote service kind: %s (supported: %s, %s)", kind, ServiceKindHTTP, ServiceKindMemory)
	}
}
