package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ProfessorsHandler serves POST /api/professors: scrape a professor page and
// ingest its reviews.
type ProfessorsHandler struct {
	Ingest func(ctx context.Context, link string) (int, error)
}

type professorsRequest struct {
	Link string `json:"link"`
}

type professorsResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *ProfessorsHandler) Handle(c echo.Context) error {
	var req professorsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Link) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "link is required")
	}

	count, err := h.Ingest(c.Request().Context(), req.Link)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, professorsResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, professorsResponse{Success: true, Count: count})
}
