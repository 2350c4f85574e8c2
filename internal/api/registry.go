package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"unigate/internal/metrics"
	"unigate/internal/wallet"
	apperr "unigate/pkg/errors"
)

type addCampusRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// addCampus submits University.addCampus signed with the caller's wallet.
// A ledger revert surfaces as 400 with the revert reason; no gas is spent.
func (s *Server) addCampus(c echo.Context) error {
	var req addCampusRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrBadRequest
	}
	ctx := c.Request().Context()
	account, err := s.unlockAccount(c, req.Password)
	if err != nil {
		return err
	}
	defer account.Destroy()

	if _, err := s.Registry.AddCampus(ctx, account.PrivateKey(), req.Name); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Campus created"})
}

func (s *Server) getCampus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	campus, err := s.Registry.Campus(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": campus})
}

func (s *Server) getCampusCareers(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	careers, err := s.Registry.CampusCareers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"careers": careers})
}

func (s *Server) getCareer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	career, err := s.Registry.Career(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": career})
}

func (s *Server) getCareerPensums(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	pensums, err := s.Registry.CareerPensums(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"pensums": pensums})
}

func (s *Server) getPensum(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	pensum, err := s.Registry.Pensum(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": pensum})
}

func (s *Server) getSubject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	subject, err := s.Registry.Subject(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": subject})
}

func (s *Server) gasPrice(c echo.Context) error {
	if price, ok := s.Prices.Get("gas"); ok {
		return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"price": price.String()}})
	}

	price, err := s.Registry.GasPrice(c.Request().Context())
	if err != nil {
		return err
	}
	s.Prices.Set("gas", price)
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"price": price.String()}})
}

func (s *Server) usdPrice(c echo.Context) error {
	if price, ok := s.Prices.Get("usd"); ok {
		return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"price": price.String()}})
	}

	price, err := s.Registry.LatestPrice(c.Request().Context())
	if err != nil {
		return err
	}
	s.Prices.Set("usd", price)
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"price": price.String()}})
}

// metricsSnapshot exposes the process counters.
func (s *Server) metricsSnapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, metrics.Global.GetSnapshot())
}

// unlockAccount runs the password gate, decrypts the caller's phrase and
// derives the signing account. The phrase is wiped before returning.
func (s *Server) unlockAccount(c echo.Context, password string) (*wallet.Account, error) {
	unlocked, err := s.Gateway.Unlock(c.Request().Context(), currentUser(c), password)
	if err != nil {
		return nil, err
	}
	defer unlocked.Destroy()

	account, err := wallet.DeriveAccount(unlocked.Phrase())
	if err != nil {
		return nil, apperr.Wrap(err, "deriving account")
	}
	return account, nil
}

func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.WithMessage(apperr.ErrBadRequest, "invalid id")
	}
	return id, nil
}

func intQueryParam(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
