package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperr "unigate/pkg/errors"
)

func (s *Server) studentSubjects(c echo.Context) error {
	ctx := c.Request().Context()
	w, err := s.Store.ActiveWallet(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	subjects, err := s.Registry.UserCurrentSubjects(ctx, w.Address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": subjects})
}

func (s *Server) studentSubjectsOptions(c echo.Context) error {
	ctx := c.Request().Context()
	w, err := s.Store.ActiveWallet(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	options, err := s.Registry.UserSubjectsOptions(ctx, w.Address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": options})
}

type registerSubjectsRequest struct {
	SubjectIDs []uint64 `json:"subjectsId"`
	Password   string   `json:"password"`
}

// registerSubjects enrolls the caller in the given subjects on the ledger,
// signed with their own wallet.
func (s *Server) registerSubjects(c echo.Context) error {
	var req registerSubjectsRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrBadRequest
	}
	if len(req.SubjectIDs) == 0 {
		return apperr.WithMessage(apperr.ErrBadRequest, "subjectsId is required")
	}

	account, err := s.unlockAccount(c, req.Password)
	if err != nil {
		return err
	}
	defer account.Destroy()

	if _, err := s.Registry.RegisterSubjects(c.Request().Context(), account.PrivateKey(), req.SubjectIDs); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"message": "Subjects registered successfully"}})
}
