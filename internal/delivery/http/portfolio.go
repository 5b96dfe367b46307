package http

import (
	"net/http"

	"options-dashboard/internal/dto"
	"options-dashboard/internal/model"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPortfolio(v1 *echo.Group) {
	portfolio := v1.Group("/portfolio")
	{
		portfolio.GET("", h.getPortfolio)
		portfolio.POST("/holdings", h.addHolding)
		portfolio.DELETE("/holdings/:id", h.removeHolding)
		portfolio.POST("/refresh", h.refreshPortfolio)
	}
}

func (h *HttpAPIHandler) getPortfolio(c echo.Context) error {
	snapshot := h.service.Dashboard.Snapshot()
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", toPortfolioView(snapshot)))
}

func (h *HttpAPIHandler) addHolding(c echo.Context) error {
	req := new(dto.AddHoldingRequest)
	if resp := h.bindRequest(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	holding, err := h.service.Dashboard.AddHolding(c.Request().Context(), model.NewHolding{
		Ticker:        req.Ticker,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Holding added", toHoldingView(holding)))
}

func (h *HttpAPIHandler) removeHolding(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid holding id"))
	}
	if err := h.service.Dashboard.RemoveHolding(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Holding removed", nil))
}

func (h *HttpAPIHandler) refreshPortfolio(c echo.Context) error {
	h.service.Dashboard.RefreshPrices(c.Request().Context())
	return h.getPortfolio(c)
}
