package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/delivery"
	"github.com/x-xyz/marketledger/base/price"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/middleware"
	"github.com/x-xyz/marketledger/stores/marketplace/usecase"
)

// HeaderValue carries the wei amount attached to a call
const HeaderValue = "X-Value"

type handler struct {
	uc marketplace.UseCase
}

type listRequest struct {
	Collection string `json:"collection" validate:"address"`
	TokenId    string `json:"tokenId" validate:"tokenid"`
	Price      string `json:"price" validate:"required"`
}

type priceRequest struct {
	Price string `json:"price" validate:"required"`
}

type ownerRequest struct {
	Owner string `json:"owner" validate:"required"`
}

type feeRequest struct {
	Fee string `json:"fee" validate:"required"`
}

type periodRequest struct {
	// whole seconds
	Period string `json:"period" validate:"required"`
}

type invokeRequest struct {
	Method string   `json:"method"`
	Args   []string `json:"args"`
}

type paymentResponse struct {
	Payee       domain.Address `json:"payee"`
	Amount      string         `json:"amount"`
	AmountEther string         `json:"amountEther"`
	UnlockAt    int64          `json:"unlockAt"`
}

type withdrawResponse struct {
	Payee  domain.Address `json:"payee"`
	Amount string         `json:"amount"`
}

// New registers the marketplace routes
func New(e *echo.Echo, uc marketplace.UseCase) {
	h := &handler{uc}

	g := e.Group("/marketplace")
	g.GET("/config", h.getConfig)
	g.GET("/listings/count", h.getListingCount)
	g.GET("/listings/:collection/:tokenId", h.getListing, middleware.IsValidAddress("collection"))
	g.POST("/listings", h.listToken, middleware.RequireAccount())
	g.PATCH("/listings/:collection/:tokenId", h.updateListing, middleware.IsValidAddress("collection"), middleware.RequireAccount())
	g.DELETE("/listings/:collection/:tokenId", h.delistToken, middleware.IsValidAddress("collection"), middleware.RequireAccount())
	g.POST("/listings/:collection/:tokenId/buy", h.buyToken, middleware.IsValidAddress("collection"), middleware.RequireAccount())

	g.GET("/payments/:payee", h.getPayments, middleware.IsValidAddress("payee"))
	g.POST("/payments/:payee/withdraw", h.withdrawPayments, middleware.IsValidAddress("payee"), middleware.RequireAccount())

	admin := g.Group("/admin", middleware.RequireAccount())
	admin.POST("/pause", h.pause)
	admin.POST("/unpause", h.unpause)
	admin.POST("/renounce", h.renounceOwnership)
	admin.POST("/owner", h.transferOwnership)
	admin.POST("/listing-fee", h.setListingFee)
	admin.POST("/withdrawal-period", h.setWithdrawalPeriod)

	g.POST("/invoke", h.invoke)
}

// txOf builds the call envelope, a malformed value makes the call unrecognized
func txOf(c echo.Context) (marketplace.Tx, error) {
	value, err := domain.ParseAmount(c.Request().Header.Get(HeaderValue))
	if err != nil {
		return marketplace.Tx{}, domain.ErrUnrecognized
	}
	return marketplace.Tx{From: middleware.Account(c), Value: value}, nil
}

// keyOf reads the listing key path params
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

// done writes the outcome of a mutating call
func done(c echo.Context, err error) error {
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) getConfig(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	cfg, err := h.uc.Config(cont)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, marketplace.NewConfigView(cfg))
}

func (h *handler) getListingCount(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	n, err := h.uc.ListingCount(cont)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, strconv.FormatUint(n, 10))
}

func (h *handler) getListing(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	coll, id, err := keyOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	l, err := h.uc.GetListing(cont, coll, id)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, marketplace.NewListingView(l))
}

func (h *handler) listToken(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	req := listRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	coll, err := domain.ParseAddress(req.Collection)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	id, err := domain.ParseTokenId(req.TokenId)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	p, err := domain.ParseAmount(req.Price)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.ListToken(cont, tx, coll, id, p))
}

func (h *handler) updateListing(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	req := priceRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	coll, id, err := keyOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	p, err := domain.ParseAmount(req.Price)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.UpdateListing(cont, tx, coll, id, p))
}

func (h *handler) delistToken(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	coll, id, err := keyOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.DelistToken(cont, tx, coll, id))
}

func (h *handler) buyToken(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	coll, id, err := keyOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.BuyToken(cont, tx, coll, id))
}

func (h *handler) getPayments(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	payee, err := domain.ParseAddress(c.Param("payee"))
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	amount, err := h.uc.Payments(cont, payee)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	unlockAt, err := h.uc.PaymentDate(cont, payee)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, paymentResponse{
		Payee:       payee,
		Amount:      amount.Dec(),
		AmountEther: price.ToEther(amount).String(),
		UnlockAt:    usecase.UnixSeconds(unlockAt),
	})
}

func (h *handler) withdrawPayments(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	payee, err := domain.ParseAddress(c.Param("payee"))
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	amount, err := h.uc.WithdrawPayments(cont, tx, payee)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, withdrawResponse{Payee: payee, Amount: amount.Dec()})
}

func (h *handler) pause(c echo.Context) error {
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.Pause(c.Get("ctx").(ctx.Ctx), tx))
}

func (h *handler) unpause(c echo.Context) error {
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.Unpause(c.Get("ctx").(ctx.Ctx), tx))
}

func (h *handler) renounceOwnership(c echo.Context) error {
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.RenounceOwnership(c.Get("ctx").(ctx.Ctx), tx))
}

func (h *handler) transferOwnership(c echo.Context) error {
	req := ownerRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	newOwner, err := domain.ParseAddress(req.Owner)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.TransferOwnership(c.Get("ctx").(ctx.Ctx), tx, newOwner))
}

func (h *handler) setListingFee(c echo.Context) error {
	req := feeRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	fee, err := domain.ParseAmount(req.Fee)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.SetListingFee(c.Get("ctx").(ctx.Ctx), tx, fee))
}

func (h *handler) setWithdrawalPeriod(c echo.Context) error {
	req := periodRequest{}
	if err := bind(c, &req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	tx, err := txOf(c)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	period, err := usecase.ParsePeriod(req.Period)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return done(c, h.uc.SetWithdrawalPeriod(c.Get("ctx").(ctx.Ctx), tx, period))
}

// invoke routes a raw call. The caller is optional here since a bare value
// transfer or a query needs no identity.
func (h *handler) invoke(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	req := invokeRequest{}
	if err := c.Bind(&req); err != nil {
		return delivery.MakeErrorResp(c, domain.ErrUnrecognized)
	}
	value, err := domain.ParseAmount(c.Request().Header.Get(HeaderValue))
	if err != nil {
		return delivery.MakeErrorResp(c, domain.ErrUnrecognized)
	}
	from := domain.EmptyAddress
	if account := c.Request().Header.Get(middleware.HeaderAccount); account != "" {
		if from, err = domain.ParseAddress(account); err != nil {
			return delivery.MakeErrorResp(c, domain.ErrUnrecognized)
		}
	}

	res, err := h.uc.Invoke(cont, marketplace.Call{
		Tx:     marketplace.Tx{From: from, Value: value},
		Method: req.Method,
		Args:   req.Args,
	})
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
