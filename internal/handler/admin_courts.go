package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-complex/internal/service"
)

// CourtHandler serves /admin/courts.
type CourtHandler struct {
	Courts *service.CourtService
}

func NewCourtHandler(s *service.CourtService) *CourtHandler { return &CourtHandler{Courts: s} }

// Numbers arrive as float64 so that 2.5 people is reported as a
// validation error instead of a bind failure.
type createCourtReq struct {
	Name         string   `json:"name"`
	Capacity     *float64 `json:"capacity"`
	PricePerHour *float64 `json:"pricePerHour"`
	Status       string   `json:"status"`
	SportIDs     []int64  `json:"sportIds"`
}

type updateCourtReq struct {
	Name         *string  `json:"name"`
	Capacity     *float64 `json:"capacity"`
	PricePerHour *float64 `json:"pricePerHour"`
	Status       *string  `json:"status"`
	SportIDs     []int64  `json:"sportIds"`
}

// List GET /admin/courts?search=
func (h *CourtHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Courts.List(ctx, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get GET /admin/courts/:id
func (h *CourtHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid court id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	court, err := h.Courts.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, court)
}

// Create POST /admin/courts
func (h *CourtHandler) Create(c echo.Context) error {
	var req createCourtReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	court, err := h.Courts.Create(ctx, service.CourtInput{
		Name:         req.Name,
		Capacity:     req.Capacity,
		PricePerHour: req.PricePerHour,
		Status:       req.Status,
		SportIDs:     req.SportIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, court)
}

// Update PUT /admin/courts/:id.  Omitted fields are left unchanged; a
// present sportIds array (even empty) replaces the court's sports.
func (h *CourtHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid court id")
	}
	var req updateCourtReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	court, err := h.Courts.Update(ctx, id, service.CourtUpdate{
		Name:         req.Name,
		Capacity:     req.Capacity,
		PricePerHour: req.PricePerHour,
		Status:       req.Status,
		SportIDs:     req.SportIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, court)
}

// Delete DELETE /admin/courts/:id
func (h *CourtHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid court id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Courts.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "court deleted"})
}
