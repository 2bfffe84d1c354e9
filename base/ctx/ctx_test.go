package ctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketledger/base/log"
)

type testsuite struct {
	suite.Suite
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestWithValue() {
	bg := Background()
	ctx := WithValue(bg, "op", "buyToken")
	ts.Equal("buyToken", ctx.Value("op"))
	ts.Nil(bg.Value("op"))
}

func (ts *testsuite) TestWithValues() {
	bg := Background()
	ctx := WithValues(bg, map[string]interface{}{
		"collection": "0xabc",
		"tokenId":    "1",
	})
	ts.Equal("0xabc", ctx.Value("collection"))
	ts.Equal("1", ctx.Value("tokenId"))
}

func (ts *testsuite) TestWithFieldsKeepsValues() {
	bg := WithValue(Background(), "op", "listToken")
	ctx := WithFields(bg, log.Fields{"seller": "0x1"})
	ts.Equal("listToken", ctx.Value("op"))
	ts.Nil(ctx.Value("seller"))
}

func (ts *testsuite) TestFrom() {
	type key struct{}
	parent := context.WithValue(context.Background(), key{}, 7)
	ctx := From(parent, log.Log())
	ts.Equal(7, ctx.Value(key{}))
}

func (ts *testsuite) TestWithCancel() {
	bg := Background()
	ctx, cancel := WithCancel(bg)
	defer cancel()
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		ts.Fail("context was not canceled")
	}
}

func (ts *testsuite) TestTimeout() {
	bg := Background()
	ctx, cancel := WithTimeout(bg, 10*time.Millisecond)
	defer cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		ts.Fail("context did not time out")
	}
	ts.Equal(context.DeadlineExceeded, ctx.Err())
}
