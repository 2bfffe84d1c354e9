package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/validator"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/middleware"
	assetUC "github.com/x-xyz/marketledger/stores/asset/usecase"
	"github.com/x-xyz/marketledger/stores/state/bolt"
)

const (
	market     = "0x5fbdb2315678afecb367f032d93f642f64180aa3"
	seller     = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	buyer      = "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
	collection = "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"
)

type response struct {
	Data   json.RawMessage `json:"data"`
	Status string          `json:"status"`
}

type handlerSuite struct {
	suite.Suite

	e        *echo.Echo
	store    marketplace.Store
	registry asset.Registry
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) SetupTest() {
	store, err := bolt.Open(filepath.Join(s.T().TempDir(), "market.db"))
	s.Require().NoError(err)
	s.store = store
	s.registry = assetUC.NewStored(store)
	s.e = echo.New()
	s.e.Validator = validator.NewCustomValidator(validator.New())
	s.e.Use(middleware.InitMiddleware(nil).AddContext())
	New(s.e, s.registry, nil, market)
}

func (s *handlerSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *handlerSuite) do(method, path, account, body string) (int, response) {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if account != "" {
		r.Header.Set(middleware.HeaderAccount, account)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, r)

	res := response{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	return rec.Code, res
}

func (s *handlerSuite) token() tokenResponse {
	code, res := s.do(http.MethodGet, "/assets/"+collection+"/1", "", "")
	s.Require().Equal(http.StatusOK, code)
	tok := tokenResponse{}
	s.Require().NoError(json.Unmarshal(res.Data, &tok))
	return tok
}

func (s *handlerSuite) TestMintApproveTransfer() {
	req := s.Require()

	code, _ := s.do(http.MethodPost, "/assets/"+collection+"/1/mint", "", `{"to":"`+seller+`"}`)
	req.Equal(http.StatusOK, code)
	tok := s.token()
	req.Equal(seller, string(tok.Owner))
	req.False(tok.MarketApproved)

	code, _ = s.do(http.MethodPost, "/assets/"+collection+"/1/mint", "", `{"to":"`+buyer+`"}`)
	req.Equal(http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/assets/"+collection+"/1/approve", buyer, `{"approved":"`+market+`"}`)
	req.Equal(http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, "/assets/"+collection+"/1/approve", seller, `{"approved":"`+market+`"}`)
	req.Equal(http.StatusOK, code)
	req.True(s.token().MarketApproved)

	code, _ = s.do(http.MethodPost, "/assets/"+collection+"/1/transfer", market, `{"to":"`+buyer+`"}`)
	req.Equal(http.StatusOK, code)
	tok = s.token()
	req.Equal(buyer, string(tok.Owner))
	req.False(tok.MarketApproved)
}

func (s *handlerSuite) TestOperators() {
	req := s.Require()
	req.NoError(s.registry.Mint(ctx.Background(), collection, "1", seller))

	code, _ := s.do(http.MethodPost, "/assets/"+collection+"/operators", seller, `{"operator":"`+market+`","approved":true}`)
	req.Equal(http.StatusOK, code)
	req.True(s.token().MarketApproved)

	code, _ = s.do(http.MethodPost, "/assets/"+collection+"/operators", seller, `{"operator":"`+market+`","approved":false}`)
	req.Equal(http.StatusOK, code)
	req.False(s.token().MarketApproved)
}

func (s *handlerSuite) TestErrors() {
	req := s.Require()

	code, _ := s.do(http.MethodGet, "/assets/"+collection+"/1", "", "")
	req.Equal(http.StatusBadRequest, code, "unknown collection")

	code, _ = s.do(http.MethodGet, "/assets/not-an-address/1", "", "")
	req.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/assets/"+collection+"/1/approve", "", `{"approved":"`+market+`"}`)
	req.Equal(http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/assets/"+collection+"/1/onchain", "", "")
	req.Equal(http.StatusServiceUnavailable, code)
}
