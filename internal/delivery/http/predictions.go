package http

import (
	"net/http"
	"strconv"

	"options-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPredictions(v1 *echo.Group) {
	predictions := v1.Group("/predictions")
	{
		predictions.GET("", h.listPredictions)
		predictions.POST("/refresh", h.refreshPredictions)
		predictions.GET("/:ticker", h.getPrediction)
		predictions.POST("/:ticker/refresh", h.refreshPrediction)
		predictions.GET("/:ticker/history", h.getPredictionHistory)
	}
	v1.GET("/historical/:ticker", h.getHistorical)
}

func (h *HttpAPIHandler) listPredictions(c echo.Context) error {
	results := h.service.Dashboard.Predictions()
	views := make([]dto.PredictionView, 0, len(results))
	for _, r := range results {
		views = append(views, toPredictionView(r))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", views))
}

func (h *HttpAPIHandler) getPrediction(c echo.Context) error {
	result, err := h.service.Dashboard.Prediction(c.Param("ticker"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", toPredictionView(result)))
}

// refreshPredictions re-requests every tracked ticker. Failures become
// per-ticker error entries, so the call itself always succeeds.
func (h *HttpAPIHandler) refreshPredictions(c echo.Context) error {
	h.service.Dashboard.RefreshAll(c.Request().Context())
	return h.listPredictions(c)
}

func (h *HttpAPIHandler) refreshPrediction(c echo.Context) error {
	result, err := h.service.Dashboard.Refresh(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", toPredictionView(result)))
}

func (h *HttpAPIHandler) getPredictionHistory(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("limit must be a positive integer"))
		}
		limit = parsed
	}

	histories, err := h.service.Dashboard.History(c.Request().Context(), c.Param("ticker"), limit)
	if err != nil {
		return errorResponse(c, err)
	}

	views := make([]dto.PredictionHistoryView, 0, len(histories))
	for _, row := range histories {
		views = append(views, toHistoryView(row))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", views))
}

// getHistorical passes the backend payload through untouched.
func (h *HttpAPIHandler) getHistorical(c echo.Context) error {
	data, err := h.service.Dashboard.Historical(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", data))
}
