package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/delivery"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/event"
)

const defaultLimit = 100

type handler struct {
	journal event.Journal
}

func New(e *echo.Echo, journal event.Journal) {
	h := &handler{journal}
	e.GET("/events", h.findAll)
}

// findAll supports ?name=&account=&offset=&limit=
func (h *handler) findAll(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	opts := []event.FindAllOptionsFunc{}

	if name := c.QueryParam("name"); name != "" {
		opts = append(opts, event.WithName(event.Name(name)))
	}
	if account := c.QueryParam("account"); account != "" {
		addr, err := domain.ParseAddress(account)
		if err != nil {
			return delivery.MakeErrorResp(c, err)
		}
		opts = append(opts, event.WithAccount(addr))
	}

	offset, limit := 0, defaultLimit
	if s := c.QueryParam("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid offset")
		}
		offset = v
	}
	if s := c.QueryParam("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid limit")
		}
		limit = v
	}
	opts = append(opts, event.WithPagination(offset, limit))

	events, err := h.journal.FindAll(cont, opts...)
	if err != nil {
		return delivery.MakeErrorResp(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, events)
}
