package env

import (
	"os"
)

// PodName example: marketledger-api-6868d88fbd-bz8zv. Outside kubernetes
// the host name stands in for it.
func PodName() string {
	if name := os.Getenv("PODNAME"); name != "" {
		return name
	}
	host, _ := os.Hostname()
	return host
}
