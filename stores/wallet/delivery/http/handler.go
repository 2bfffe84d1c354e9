package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/delivery"
	"github.com/x-xyz/marketledger/base/price"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/payment"
	"github.com/x-xyz/marketledger/middleware"
)

type handler struct {
	wallet payment.Wallet
}

type depositRequest struct {
	// wei, decimal
	Amount string `json:"amount" validate:"amount"`
}

type balanceResponse struct {
	Account      domain.Address `json:"account"`
	Balance      string         `json:"balance"`
	BalanceEther string         `json:"balanceEther"`
}

// New registers the wallet routes. The deposit route creates value out of
// nothing, it is only served when faucet is on.
func New(e *echo.Echo, wallet payment.Wallet, faucet bool) {
	h := &handler{wallet}

	g := e.Group("/wallets/:account", middleware.IsValidAddress("account"))
	g.GET("", h.getBalance)
	if faucet {
		g.POST("/deposit", h.deposit)
	}
}

func (h *handler) getBalance(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	account, err := domain.ParseAddress(c.Param("account"))
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	balance, err := h.wallet.BalanceOf(cont, account)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balanceResponse{
		Account:      account,
		Balance:      balance.Dec(),
		BalanceEther: price.ToEther(balance).String(),
	})
}

func (h *handler) deposit(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	req := depositRequest{}
	if err := c.Bind(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(&req); err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
		}
	}
	account, err := domain.ParseAddress(c.Param("account"))
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	if err := h.wallet.Deposit(cont, account, amount); err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return h.getBalance(c)
}
