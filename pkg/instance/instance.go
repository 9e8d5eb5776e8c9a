package instance

import (
	"os"

	"github.com/angelmondragon/freshcart-backend/pkg/env"
)

// EnvInstanceID overrides the generated process identifier.
const EnvInstanceID = "FRESHCART_INSTANCE_ID"

// ID identifies this process in logs and lock ownership. It prefers
// FRESHCART_INSTANCE_ID, then the host name, then "<kind>-0".
func ID(kind string) string {
	if id := env.First("", EnvInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return kind + "@" + host
	}
	return kind + "-0"
}
