package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/delivery"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/base/metrics"
	"github.com/x-xyz/marketledger/base/validator"
	"github.com/x-xyz/marketledger/domain"
)

const (
	// HeaderAccount carries the identity of the caller
	HeaderAccount = "X-Account"
	// KeyAccount is the echo context key of the parsed caller
	KeyAccount = "account"
)

// GoMiddleware represent the data-struct for middleware
type GoMiddleware struct {
	metrics metrics.Service
}

// InitMiddleware initialize the middleware
func InitMiddleware(met metrics.Service) *GoMiddleware {
	if met == nil {
		met = metrics.Nop()
	}
	return &GoMiddleware{metrics: met}
}

// CORS will handle the CORS middleware
func (m *GoMiddleware) CORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		return next(c)
	}
}

// AddContext adds a request scoped ctx.Ctx into echo
func (m *GoMiddleware) AddContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			cont := ctx.WithFields(ctx.Background(), log.Fields{
				"requestID": c.Response().Header().Get(echo.HeaderXRequestID),
			})
			c.Set("ctx", cont)
			return next(c)
		}
	}
}

// ResponseLogger logs response for every request
func (m *GoMiddleware) ResponseLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer m.metrics.BumpTime("request.time", "method", c.Request().Method, "path", c.Path()).End()

			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			fields := log.Fields{
				"ms":         time.Since(start).Seconds() * 1000,
				"httpStatus": res.Status,
				"host":       req.Host,
				"remoteIP":   c.RealIP(),
				"uri":        req.URL.Path,
				"httpMethod": req.Method,
				"size":       res.Size,
				"userAgent":  req.UserAgent(),
				"account":    req.Header.Get(HeaderAccount),
			}
			if res.Status >= 400 {
				fields["nextErr"] = err
			}

			cont, ok := c.Get("ctx").(ctx.Ctx)
			if !ok {
				cont = ctx.Background()
			}
			cont.WithFields(fields).Info("response")
			return nil
		}
	}
}

// IsValidAddress rejects requests whose path param is not an address
func IsValidAddress(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			if !validator.IsValidAddress(c.Param(param)) {
				return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid address")
			}
			return next(c)
		}
	}
}

// RequireAccount parses the caller identity from the X-Account header
func RequireAccount() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, err := domain.ParseAddress(c.Request().Header.Get(HeaderAccount))
			if err != nil {
				return delivery.MakeJsonResp(c, http.StatusUnauthorized, "missing or invalid "+HeaderAccount+" header")
			}
			c.Set(KeyAccount, account)
			return next(c)
		}
	}
}

// Account returns the caller set by RequireAccount
func Account(c echo.Context) domain.Address {
	account, _ := c.Get(KeyAccount).(domain.Address)
	return account
}
