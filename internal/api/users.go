package api

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"unigate/internal/chain/eth"
	"unigate/internal/registry"
	"unigate/internal/store"
	apperr "unigate/pkg/errors"
)

type userView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Wallet        string    `json:"wallet,omitempty"`
}

func (s *Server) userToView(c echo.Context, u *store.User) userView {
	view := userView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Image:         u.Image,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if w, err := s.Store.ActiveWallet(c.Request().Context(), u.ID); err == nil {
		view.Wallet = w.Address
	}
	return view
}

// searchUsers looks a user up by email or active wallet address. Without a
// filter the result is empty rather than a full listing.
func (s *Server) searchUsers(c echo.Context) error {
	email := c.QueryParam("email")
	walletAddr := c.QueryParam("wallet")

	views := []userView{}
	ctx := c.Request().Context()

	switch {
	case email != "":
		u, err := s.Store.UserByEmail(ctx, email)
		if err != nil && !apperr.Is(err, apperr.ErrNotFound) {
			return err
		}
		if u != nil {
			views = append(views, s.userToView(c, u))
		}
	case walletAddr != "":
		if err := eth.ValidateAddress(walletAddr); err != nil {
			return err
		}
		w, err := s.Store.WalletByAddress(ctx, walletAddr)
		if err != nil && !apperr.Is(err, apperr.ErrWalletNotFound) {
			return err
		}
		if w != nil && w.Active {
			u, err := s.Store.UserByID(ctx, w.UserID)
			if err != nil {
				return err
			}
			views = append(views, s.userToView(c, u))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

func (s *Server) getUserRoles(c echo.Context) error {
	roles, err := s.userRoles(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"roles": roles}})
}

type walletBalanceView struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
	UserID  string `json:"userId"`
	Balance string `json:"balance"`
}

func (s *Server) getUserWallets(c echo.Context) error {
	ctx := c.Request().Context()
	wallets, err := s.Store.WalletsByUser(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	views := make([]walletBalanceView, 0, len(wallets))
	for _, w := range wallets {
		balance, err := s.Registry.Balance(ctx, w.Address)
		if err != nil {
			return err
		}
		views = append(views, walletBalanceView{
			ID:      w.ID,
			Address: w.Address,
			Active:  w.Active,
			UserID:  w.UserID,
			Balance: balance.String(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

type userInfoView struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Verified       bool      `json:"verified"`
	FirstName      string    `json:"firstName"`
	MiddleName     string    `json:"middleName,omitempty"`
	LastName       string    `json:"lastName"`
	SecondLastName string    `json:"secondLastName,omitempty"`
	Sex            string    `json:"sex"`
	PhoneNumber    string    `json:"phoneNumber"`
	BirthDate      string    `json:"birthDate"`
	BirthCountry   string    `json:"birthCountry"`
	BirthState     string    `json:"birthState"`
	BirthCity      string    `json:"birthCity"`
	Address        string    `json:"address"`
	CampusID       string    `json:"campusId"`
	CareerID       string    `json:"careerId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func infoToView(info *store.UserInfo) userInfoView {
	sex := "F"
	if info.Sex {
		sex = "M"
	}
	return userInfoView{
		ID:             info.ID,
		UserID:         info.UserID,
		Verified:       info.Verified,
		FirstName:      info.FirstName,
		MiddleName:     info.MiddleName,
		LastName:       info.LastName,
		SecondLastName: info.SecondLastName,
		Sex:            sex,
		PhoneNumber:    info.PhoneNumber,
		BirthDate:      info.BirthDate,
		BirthCountry:   info.BirthCountry,
		BirthState:     info.BirthState,
		BirthCity:      info.BirthCity,
		Address:        info.Address,
		CampusID:       info.CampusID,
		CareerID:       info.CareerID,
		CreatedAt:      info.CreatedAt,
		UpdatedAt:      info.UpdatedAt,
	}
}

func (s *Server) getUserInfo(c echo.Context) error {
	info, err := s.Store.UserInfoByUserID(c.Request().Context(), c.Param("id"))
	if apperr.Is(err, apperr.ErrNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"data": nil})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": infoToView(info)})
}

var phoneNumberRe = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type userInfoRequest struct {
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName"`
	LastName       string `json:"lastName"`
	SecondLastName string `json:"secondLastName"`
	Sex            string `json:"sex"`
	PhoneNumber    string `json:"phoneNumber"`
	BirthDate      string `json:"birthDate"`
	BirthCountry   string `json:"birthCountry"`
	BirthState     string `json:"birthState"`
	BirthCity      string `json:"birthCity"`
	Address        string `json:"address"`
	CampusID       string `json:"campusId"`
	CareerID       string `json:"careerId"`
}

func (r *userInfoRequest) validate() error {
	switch {
	case r.FirstName == "", r.LastName == "", r.BirthDate == "",
		r.BirthCountry == "", r.BirthState == "", r.BirthCity == "", r.Address == "":
		return apperr.WithMessage(apperr.ErrBadRequest, "missing required fields")
	case r.Sex != "M" && r.Sex != "F":
		return apperr.WithMessage(apperr.ErrBadRequest, "sex must be M or F")
	case !phoneNumberRe.MatchString(r.PhoneNumber):
		return apperr.WithMessage(apperr.ErrBadRequest, "invalid phone number")
	}
	if _, err := strconv.ParseUint(r.CampusID, 10, 64); err != nil {
		return apperr.WithMessage(apperr.ErrBadRequest, "invalid campus id")
	}
	if _, err := strconv.ParseUint(r.CareerID, 10, 64); err != nil {
		return apperr.WithMessage(apperr.ErrBadRequest, "invalid career id")
	}
	return nil
}

// createUserInfo records the enrollment profile a user submits for review.
// Users may only create their own profile, once.
func (s *Server) createUserInfo(c echo.Context) error {
	userID := c.Param("id")
	if currentUser(c).ID != userID {
		return apperr.ErrForbidden
	}

	var req userInfoRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrBadRequest
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := s.Store.UserInfoByUserID(ctx, userID); err == nil {
		return apperr.WithMessage(apperr.ErrBadRequest, "User info already exists")
	} else if !apperr.Is(err, apperr.ErrNotFound) {
		return err
	}

	info := &store.UserInfo{
		UserID:         userID,
		FirstName:      req.FirstName,
		MiddleName:     req.MiddleName,
		LastName:       req.LastName,
		SecondLastName: req.SecondLastName,
		Sex:            req.Sex == "M",
		PhoneNumber:    req.PhoneNumber,
		BirthDate:      req.BirthDate,
		BirthCountry:   req.BirthCountry,
		BirthState:     req.BirthState,
		BirthCity:      req.BirthCity,
		Address:        req.Address,
		CampusID:       req.CampusID,
		CareerID:       req.CareerID,
	}
	if err := s.Store.UpsertUserInfo(ctx, info); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": infoToView(info)})
}

// updateUserInfo replaces submitted fields and resets verification, so the
// profile goes through review again.
func (s *Server) updateUserInfo(c echo.Context) error {
	userID := c.Param("id")
	if currentUser(c).ID != userID {
		return apperr.ErrForbidden
	}

	var req userInfoRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrBadRequest
	}

	ctx := c.Request().Context()
	info, err := s.Store.UserInfoByUserID(ctx, userID)
	if apperr.Is(err, apperr.ErrNotFound) {
		return apperr.WithMessage(apperr.ErrNotFound, "User info does not exist")
	}
	if err != nil {
		return err
	}

	if req.FirstName != "" {
		info.FirstName = req.FirstName
	}
	if req.MiddleName != "" {
		info.MiddleName = req.MiddleName
	}
	if req.LastName != "" {
		info.LastName = req.LastName
	}
	if req.SecondLastName != "" {
		info.SecondLastName = req.SecondLastName
	}
	if req.Sex != "" {
		if req.Sex != "M" && req.Sex != "F" {
			return apperr.WithMessage(apperr.ErrBadRequest, "sex must be M or F")
		}
		info.Sex = req.Sex == "M"
	}
	if req.PhoneNumber != "" {
		if !phoneNumberRe.MatchString(req.PhoneNumber) {
			return apperr.WithMessage(apperr.ErrBadRequest, "invalid phone number")
		}
		info.PhoneNumber = req.PhoneNumber
	}
	if req.BirthDate != "" {
		info.BirthDate = req.BirthDate
	}
	if req.BirthCountry != "" {
		info.BirthCountry = req.BirthCountry
	}
	if req.BirthState != "" {
		info.BirthState = req.BirthState
	}
	if req.BirthCity != "" {
		info.BirthCity = req.BirthCity
	}

	info.Verified = false
	if err := s.Store.UpsertUserInfo(ctx, info); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": infoToView(info)})
}

type validateUserRequest struct {
	Roles    []uint8 `json:"roles"`
	Comments string  `json:"comments"`
	Password string  `json:"password"`
}

// validateUser approves a pending enrollment profile: the admin registers the
// user's wallet and roles on the ledger, then the profile is marked verified.
func (s *Server) validateUser(c echo.Context) error {
	userID := c.Param("id")
	admin := currentUser(c)
	ctx := c.Request().Context()

	var req validateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.ErrBadRequest
	}

	roles := make([]registry.Role, 0, len(req.Roles))
	for _, r := range req.Roles {
		role := registry.Role(r)
		if !role.Valid() {
			return apperr.WithMessage(apperr.ErrBadRequest, "invalid role")
		}
		roles = append(roles, role)
	}

	adminRoles, err := s.userRoles(ctx, admin.ID)
	if err != nil {
		return err
	}
	if !registry.HasRole(adminRoles, registry.RoleAdministrator) {
		return apperr.ErrForbidden
	}

	info, err := s.Store.UserInfoByUserID(ctx, userID)
	if apperr.Is(err, apperr.ErrNotFound) {
		return apperr.WithMessage(apperr.ErrNotFound, "User info does not exist")
	}
	if err != nil {
		return err
	}

	target, err := s.Store.ActiveWallet(ctx, userID)
	if apperr.Is(err, apperr.ErrWalletNotFound) {
		return apperr.WithMessage(apperr.ErrNotFound, "User wallet does not exist")
	}
	if err != nil {
		return err
	}

	careerID, err := strconv.ParseUint(info.CareerID, 10, 64)
	if err != nil {
		return apperr.WithMessage(apperr.ErrBadRequest, "invalid career id")
	}

	account, err := s.unlockAccount(c, req.Password)
	if err != nil {
		return err
	}
	defer account.Destroy()

	if _, err := s.Registry.AddUser(ctx, account.PrivateKey(), target.Address, roles, careerID); err != nil {
		return err
	}

	if err := s.Store.SetUserInfoVerified(ctx, userID, true); err != nil {
		return err
	}
	review := &store.InfoReview{
		UserID:   userID,
		AdminID:  admin.ID,
		Approved: true,
		Comments: req.Comments,
	}
	if err := s.Store.CreateInfoReview(ctx, review); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"message": "User info validated successfully"}})
}

// pendingValidations lists enrollment profiles waiting for an admin decision.
func (s *Server) pendingValidations(c echo.Context) error {
	ctx := c.Request().Context()

	roles, err := s.userRoles(ctx, currentUser(c).ID)
	if err != nil {
		return err
	}
	if !registry.HasRole(roles, registry.RoleAdministrator) {
		return apperr.ErrForbidden
	}

	pending, err := s.Store.PendingValidations(ctx)
	if err != nil {
		return err
	}

	type pendingView struct {
		User     userView     `json:"user"`
		UserInfo userInfoView `json:"userInfo"`
	}
	views := make([]pendingView, 0, len(pending))
	for i := range pending {
		user, err := s.Store.UserByID(ctx, pending[i].UserID)
		if err != nil {
			return err
		}
		views = append(views, pendingView{
			User:     s.userToView(c, user),
			UserInfo: infoToView(&pending[i]),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}
