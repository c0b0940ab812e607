package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-complex/internal/service"
)

// TaxonomyHandler serves /admin/sports and /admin/qualifications.
type TaxonomyHandler struct {
	Taxonomy *service.TaxonomyService
}

func NewTaxonomyHandler(t *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{Taxonomy: t}
}

type nameReq struct {
	Name string `json:"name"`
}

// ListSports GET /admin/sports?search=
func (h *TaxonomyHandler) ListSports(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Taxonomy.ListSports(ctx, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// CreateSport POST /admin/sports.  Posting an existing name returns that row.
func (h *TaxonomyHandler) CreateSport(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Taxonomy.UpsertSport(ctx, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// DeleteSport DELETE /admin/sports/:id
func (h *TaxonomyHandler) DeleteSport(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sport id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Taxonomy.DeleteSport(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "sport deleted"})
}

// ListQualifications GET /admin/qualifications?search=
func (h *TaxonomyHandler) ListQualifications(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Taxonomy.ListQualifications(ctx, c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// CreateQualification POST /admin/qualifications
func (h *TaxonomyHandler) CreateQualification(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	q, err := h.Taxonomy.UpsertQualification(ctx, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, q)
}
