package http

import (
	"net/http"

	"options-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupTickers(v1 *echo.Group) {
	tickers := v1.Group("/tickers")
	{
		tickers.GET("", h.listTickers)
		tickers.POST("", h.addTicker)
		tickers.DELETE("/:ticker", h.removeTicker)
	}
}

func (h *HttpAPIHandler) listTickers(c echo.Context) error {
	tickers := h.service.Dashboard.Tracked()
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", toTickerStrings(tickers)))
}

func (h *HttpAPIHandler) addTicker(c echo.Context) error {
	req := new(dto.TickerRequest)
	if resp := h.bindRequest(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	ticker, added, err := h.service.Dashboard.AddTicker(c.Request().Context(), req.Ticker)
	if err != nil {
		return errorResponse(c, err)
	}
	if !added {
		return c.JSON(http.StatusOK, dto.NewSuccessResponse("Ticker already tracked", ticker.String()))
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Ticker added", ticker.String()))
}

func (h *HttpAPIHandler) removeTicker(c echo.Context) error {
	ticker, removed, err := h.service.Dashboard.RemoveTicker(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		return errorResponse(c, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "Ticker not tracked", ticker.String()))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Ticker removed", ticker.String()))
}
