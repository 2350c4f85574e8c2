// Package api exposes the HTTP surface: wallet custody, password-gated
// ledger writes and University registry reads, served with echo.
package api

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"unigate/internal/cache"
	"unigate/internal/config"
	"unigate/internal/etherscan"
	"unigate/internal/gateway"
	"unigate/internal/registry"
	"unigate/internal/store"
	apperr "unigate/pkg/errors"
)

// Ledger is the chain access the API needs: everything the registry reads
// and writes through, plus plain value transfers.
type Ledger interface {
	registry.Ledger
	Transfer(ctx context.Context, key *ecdsa.PrivateKey, from, to string, value *big.Int) (string, error)
}

// Server keeps all the dependencies of the HTTP layer.
type Server struct {
	Echo     *echo.Echo
	Config   *config.Config
	Store    *store.Store
	Gateway  *gateway.Gateway
	Registry *registry.Registry
	Ledger   Ledger
	Scan     *etherscan.Client
	Prices   *cache.PriceCache
	Log      zerolog.Logger
}

// New wires the server and registers all routes. scan may be nil; the
// transaction history endpoint then reports the ledger as unavailable.
func New(cfg *config.Config, st *store.Store, ledger Ledger, scan *etherscan.Client, log zerolog.Logger) (*Server, error) {
	reg, err := registry.New(ledger, cfg.Eth.UniversityAddress, cfg.Eth.PriceFeedAddress)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Config:   cfg,
		Store:    st,
		Gateway:  gateway.New(st, log),
		Registry: reg,
		Ledger:   ledger,
		Scan:     scan,
		Prices:   cache.NewPriceCache(cache.DefaultStaleness),
		Log:      log.With().Str("component", "api").Logger(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.Server.CORSOrigin},
		AllowCredentials: true,
	}))
	e.Use(s.withUser)

	s.Echo = e
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	api := s.Echo.Group("/api")

	api.POST("/wallets", s.createWallet, s.requireUser)
	api.GET("/wallets", s.listWallets, s.requireUser)

	api.GET("/transactions", s.transactionHistory)
	api.POST("/transactions", s.sendTransaction, s.requireUser)

	api.POST("/campuses", s.addCampus, s.requireUser)
	api.GET("/campuses/:id", s.getCampus)
	api.GET("/campuses/:id/careers", s.getCampusCareers)
	api.GET("/careers/:id", s.getCareer)
	api.GET("/careers/:id/pensums", s.getCareerPensums)
	api.GET("/pensums/:id", s.getPensum)
	api.GET("/subjects/:id", s.getSubject)

	api.GET("/prices/gas", s.gasPrice)
	api.GET("/prices/usd", s.usdPrice)

	api.GET("/metrics", s.metricsSnapshot)

	api.GET("/users", s.searchUsers)
	api.GET("/users/:id/roles", s.getUserRoles)
	api.GET("/users/:id/wallets", s.getUserWallets)
	api.GET("/users/:id/info", s.getUserInfo)
	api.POST("/users/:id/info", s.createUserInfo, s.requireUser)
	api.PUT("/users/:id/info", s.updateUserInfo, s.requireUser)
	api.POST("/users/:id/validate", s.validateUser, s.requireUser)

	api.GET("/admin/pending-validations", s.pendingValidations, s.requireUser)

	api.GET("/student/:id/subjects", s.studentSubjects)
	api.GET("/student/:id/subjects-options", s.studentSubjectsOptions)
	api.POST("/student/register-subjects", s.registerSubjects, s.requireUser)
}

// Start blocks serving HTTP on the configured listen address.
func (s *Server) Start() error {
	s.Log.Info().Str("listen", s.Config.Server.Listen).Msg("http server starting")
	err := s.Echo.Start(s.Config.Server.Listen)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

// errorHandler renders every error as {"error": message}. Unknown errors
// are masked as internal server errors; 5xx causes are logged with the
// request path but never with request bodies.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := apperr.Status(err)
	msg := apperr.Public(err)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprintf("%v", he.Message)
	}

	if status >= http.StatusInternalServerError {
		s.Log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
	}

	if jerr := c.JSON(status, echo.Map{"error": msg}); jerr != nil {
		s.Log.Error().Err(jerr).Msg("writing error response")
	}
}
