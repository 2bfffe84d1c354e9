package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	req := require.New(t)
	req.Nil(parseTag(nil))
	req.Equal([]string{"op:buyToken", "code:NotListed"}, parseTag([]string{"op", "buyToken", "code", "NotListed"}))
	req.Panics(func() { parseTag([]string{"op"}) })
}

func TestLogClientFallback(t *testing.T) {
	req := require.New(t)
	// no datadog_host configured in tests
	m := New("marketplace", WithoutPodName())
	req.NotPanics(func() {
		m.BumpSum("listToken.ok", 1)
		m.BumpAvg("listing.count", 3)
		m.BumpHistogram("price", 10)
		m.BumpTime("listToken.time", "op", "listToken").End()
	})
	_, ok := nextClient().(*LogClient)
	req.True(ok)
}

func TestNop(t *testing.T) {
	m := Nop()
	require.NotPanics(t, func() {
		m.BumpSum("a", 1)
		m.BumpTime("b").End()
	})
}
