package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-complex/internal/middleware"
	"github.com/iliyamo/sports-complex/internal/model"
	"github.com/iliyamo/sports-complex/internal/service"
)

// AdminUserHandler serves /admin/users.
type AdminUserHandler struct {
	Users *service.UserService
}

func NewAdminUserHandler(u *service.UserService) *AdminUserHandler {
	return &AdminUserHandler{Users: u}
}

// userReq is the create and update body.  For coaches, ids win over names
// for each of the two lists.
type userReq struct {
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	Role               string   `json:"role"`
	SportIDs           []int64  `json:"sportIds"`
	SportNames         []string `json:"sportNames"`
	QualificationIDs   []int64  `json:"qualificationIds"`
	QualificationNames []string `json:"qualificationNames"`
}

func (r userReq) input() service.UserInput {
	return service.UserInput{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Role:           r.Role,
		Sports:         model.NewSelection(r.SportIDs, r.SportNames),
		Qualifications: model.NewSelection(r.QualificationIDs, r.QualificationNames),
	}
}

// List GET /admin/users
func (h *AdminUserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Get GET /admin/users/:userId
func (h *AdminUserHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Users.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Create POST /admin/users.  The temporary password is disclosed once, here.
func (h *AdminUserHandler) Create(c echo.Context) error {
	me, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Users.Create(ctx, me.Role, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Update PUT /admin/users/:userId
func (h *AdminUserHandler) Update(c echo.Context) error {
	me, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}
	id, ok := pathID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Update(ctx, me.Role, id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Disable PATCH /admin/users/:userId/disable
func (h *AdminUserHandler) Disable(c echo.Context) error {
	return h.toggle(c, false)
}

// Enable PATCH /admin/users/:userId/enable
func (h *AdminUserHandler) Enable(c echo.Context) error {
	return h.toggle(c, true)
}

func (h *AdminUserHandler) toggle(c echo.Context, active bool) error {
	me, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}
	id, ok := pathID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	var err error
	msg := "user disabled"
	if active {
		err = h.Users.Enable(ctx, me, id)
		msg = "user enabled"
	} else {
		err = h.Users.Disable(ctx, me, id)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// Delete DELETE /admin/users/:userId (SUPER_ADMIN only, enforced by the router).
func (h *AdminUserHandler) Delete(c echo.Context) error {
	me, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}
	id, ok := pathID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, me.ID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
