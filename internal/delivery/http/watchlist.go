package http

import (
	"net/http"

	"options-dashboard/internal/dto"
	"options-dashboard/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupWatchlist(v1 *echo.Group) {
	watchlist := v1.Group("/watchlist")
	{
		watchlist.GET("", h.getWatchlist)
		watchlist.POST("", h.addToWatchlist)
		watchlist.DELETE("/:ticker", h.removeFromWatchlist)
	}
}

func (h *HttpAPIHandler) getWatchlist(c echo.Context) error {
	sortMode, err := service.ParseSortMode(c.QueryParam("sort"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	items := []dto.WatchlistItemView{}
	for ticker := range h.service.Dashboard.Watchlist(sortMode, service.FilterMode(c.QueryParam("sector"))) {
		items = append(items, dto.WatchlistItemView{
			Ticker:  ticker.String(),
			Sectors: h.service.Dashboard.Sectors(ticker),
		})
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", items))
}

func (h *HttpAPIHandler) addToWatchlist(c echo.Context) error {
	req := new(dto.TickerRequest)
	if resp := h.bindRequest(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	ticker, added, err := h.service.Dashboard.AddToWatchlist(c.Request().Context(), req.Ticker)
	if err != nil {
		return errorResponse(c, err)
	}
	if !added {
		return c.JSON(http.StatusOK, dto.NewSuccessResponse("Ticker already in watchlist", ticker.String()))
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Added to watchlist", ticker.String()))
}

func (h *HttpAPIHandler) removeFromWatchlist(c echo.Context) error {
	ticker, removed, err := h.service.Dashboard.RemoveFromWatchlist(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		return errorResponse(c, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "Ticker not in watchlist", ticker.String()))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Removed from watchlist", ticker.String()))
}
