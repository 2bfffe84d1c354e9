package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/holiman/uint256"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/middleware"
	eventRepo "github.com/x-xyz/marketledger/stores/event/repository"
)

const (
	seller     = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	buyer      = "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
	collection = "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"
)

type response struct {
	Data   json.RawMessage `json:"data"`
	Status string          `json:"status"`
}

func TestFindAll(t *testing.T) {
	req := require.New(t)

	journal := eventRepo.NewMemoryJournal(0)
	req.NoError(journal.Publish(ctx.Background(),
		event.TokenListed(seller, collection, "1", uint256.NewInt(100)),
		event.TokenBought(buyer, collection, "1", uint256.NewInt(100)),
		event.PaymentsWithdrawn(seller, uint256.NewInt(100)),
	))

	e := echo.New()
	e.Use(middleware.InitMiddleware(nil).AddContext())
	New(e, journal)

	get := func(query string) (int, []event.Event) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events"+query, nil))
		res := response{}
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &res))
		evs := []event.Event{}
		if rec.Code == http.StatusOK {
			req.NoError(json.Unmarshal(res.Data, &evs))
		}
		return rec.Code, evs
	}

	code, evs := get("")
	req.Equal(http.StatusOK, code)
	req.Len(evs, 3)

	_, evs = get("?account=" + seller)
	req.Len(evs, 2)
	req.Equal(event.NameTokenListed, evs[0].Name)

	_, evs = get("?name=TokenBought")
	req.Len(evs, 1)
	req.Equal(buyer, string(evs[0].Account))

	_, evs = get("?offset=1&limit=1")
	req.Len(evs, 1)
	req.Equal(event.NameTokenBought, evs[0].Name)

	code, _ = get("?limit=0")
	req.Equal(http.StatusBadRequest, code)
	code, _ = get("?account=nope")
	req.Equal(http.StatusBadRequest, code)
}
