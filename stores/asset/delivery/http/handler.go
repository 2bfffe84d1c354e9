package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/delivery"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/middleware"
)

type handler struct {
	registry asset.Registry
	// onchain is nil when no rpc is configured
	onchain asset.Oracle
	market  domain.Address
}

type mintRequest struct {
	To string `json:"to" validate:"address"`
}

type approveRequest struct {
	Approved string `json:"approved" validate:"required"`
}

type operatorRequest struct {
	Operator string `json:"operator" validate:"address"`
	Approved bool   `json:"approved"`
}

type transferRequest struct {
	To string `json:"to" validate:"address"`
}

type tokenResponse struct {
	Collection     domain.Address `json:"collection"`
	TokenId        domain.TokenId `json:"tokenId"`
	Owner          domain.Address `json:"owner"`
	MarketApproved bool           `json:"marketApproved"`
}

// New registers the asset routes. market is the operator whose approval
// is reported by the read endpoints.
func New(e *echo.Echo, registry asset.Registry, onchain asset.Oracle, market domain.Address) {
	h := &handler{
		registry: registry,
		onchain:  onchain,
		market:   market,
	}

	g := e.Group("/assets/:collection", middleware.IsValidAddress("collection"))
	g.GET("/:tokenId", h.getToken)
	g.GET("/:tokenId/onchain", h.getOnchainToken)
	g.POST("/:tokenId/mint", h.mint)
	g.POST("/:tokenId/approve", h.approve, middleware.RequireAccount())
	g.POST("/:tokenId/transfer", h.transfer, middleware.RequireAccount())
	g.POST("/operators", h.setApprovalForAll, middleware.RequireAccount())
}

func keyOf(c echo.Context) (domain.Address, domain.TokenId, error) {
	coll, err := domain.ParseAddress(c.Param("collection"))
	if err != nil {
		return "", "", err
	}
	id, err := domain.ParseTokenId(c.Param("tokenId"))
	if err != nil {
		return "", "", err
	}
	return coll, id, nil
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}

func (h *handler) describe(c echo.Context, oracle asset.Oracle) error {
	cont := c.Get("ctx").(ctx.Ctx)
	coll, id, err := keyOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	owner, err := oracle.OwnerOf(cont, coll, id)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	approved, err := oracle.IsApprovedOperator(cont, coll, id, h.market)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, tokenResponse{
		Collection:     coll,
		TokenId:        id,
		Owner:          owner,
		MarketApproved: approved,
	})
}

func (h *handler) getToken(c echo.Context) error {
	return h.describe(c, h.registry)
}

func (h *handler) getOnchainToken(c echo.Context) error {
	if h.onchain == nil {
		return delivery.MakeJsonResp(c, http.StatusServiceUnavailable, "no chain rpc configured")
	}
	return h.describe(c, h.onchain)
}

func (h *handler) mint(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	req := mintRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	coll, id, err := keyOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	if err := h.registry.Mint(cont, coll, id, to); err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) approve(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	req := approveRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	coll, id, err := keyOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	approved, err := domain.ParseAddress(req.Approved)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	if err := h.registry.Approve(cont, coll, id, middleware.Account(c), approved); err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// transfer moves a token out of band, the caller acts as operator
func (h *handler) transfer(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	req := transferRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	coll, id, err := keyOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	from, err := h.registry.OwnerOf(cont, coll, id)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	if err := h.registry.Transfer(cont, coll, id, middleware.Account(c), from, to); err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) setApprovalForAll(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	req := operatorRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	coll, err := domain.ParseAddress(c.Param("collection"))
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	operator, err := domain.ParseAddress(req.Operator)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	if err := h.registry.SetApprovalForAll(cont, coll, middleware.Account(c), operator, req.Approved); err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
