package http

import (
	"context"
	"errors"
	"net/http"

	"options-dashboard/config"
	"options-dashboard/internal/dto"
	"options-dashboard/internal/model"
	"options-dashboard/internal/service"
	"options-dashboard/pkg/middleware"
	"options-dashboard/pkg/realtime"
	"options-dashboard/pkg/session"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	cfg       *config.Config
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	broker    *realtime.Broker
}

func NewHttpAPIHandler(ctx context.Context, cfg *config.Config, echo *echo.Echo, validator *goValidator.Validate, service *service.Service, broker *realtime.Broker) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:       cfg,
		echo:      echo,
		validator: validator,
		service:   service,
		broker:    broker,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api")
	v1 := base.Group("/v1", middleware.NewRateLimiterMiddleware(h.cfg.API.RateLimit, h.cfg.API.RateBurst))
	h.SetupTickers(v1)
	h.SetupPredictions(v1)
	h.SetupWatchlist(v1)
	h.SetupPortfolio(v1)

	// SSE connections are long-lived and stay outside the rate limiter.
	base.GET("/v1/stream", echo.WrapHandler(h.broker))
}

// bindRequest decodes the body into req and runs its validate tags. A non-nil
// result is the bad request response to send.
func (h *HttpAPIHandler) bindRequest(c echo.Context, req interface{}) *dto.BaseResponse {
	if err := c.Bind(req); err != nil {
		return dto.NewBadRequestResponse("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return dto.NewBadRequestResponse(err.Error())
	}
	return nil
}

// errorResponse maps a service error to its status code.
func errorResponse(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	message := err.Error()

	var apiErr *dto.APIError
	switch {
	case errors.Is(err, model.ErrInvalidTicker), errors.Is(err, model.ErrInvalidHolding):
		code = http.StatusBadRequest
	case errors.Is(err, model.ErrTickerNotFound), errors.Is(err, model.ErrHoldingNotFound):
		code = http.StatusNotFound
	case session.IsAuthError(err):
		code = http.StatusUnauthorized
	case errors.As(err, &apiErr):
		code = http.StatusBadGateway
		if apiErr.Detail != "" {
			message = apiErr.Detail
		}
	}

	return c.JSON(code, dto.NewBaseResponse(code, message, nil))
}
