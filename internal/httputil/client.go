package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound call to the risk API. The sync core
// enforces no timeout of its own; timeouts live at the collaborator boundary.
const DefaultTimeout = 15 * time.Second

// NewClient returns an HTTP client with the standard outbound timeout.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
