package env

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPodName(t *testing.T) {
	req := require.New(t)

	t.Setenv("PODNAME", "marketledger-api-0")
	req.Equal("marketledger-api-0", PodName())

	t.Setenv("PODNAME", "")
	host, _ := os.Hostname()
	req.Equal(host, PodName())
}
