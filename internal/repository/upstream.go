package repository

import (
	"context"
	"encoding/json"
	"time"

	"options-dashboard/internal/dto"
	"options-dashboard/pkg/httpclient"
	"options-dashboard/pkg/session"

	"golang.org/x/time/rate"
)

// upstreamBase carries what every call to the dashboard backend needs: the
// shared http client, the injected session credential and the request limiter.
type upstreamBase struct {
	httpClient     httpclient.HTTPClient
	credential     *session.Credential
	requestLimiter *rate.Limiter
}

func newUpstreamBase(httpClient httpclient.HTTPClient, credential *session.Credential, maxRequestPerMinute int) upstreamBase {
	perRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return upstreamBase{
		httpClient:     httpClient,
		credential:     credential,
		requestLimiter: rate.NewLimiter(rate.Every(perRequest), 1),
	}
}

// prepare waits for the limiter and builds the auth headers. A missing or
// expired credential fails the call before anything goes on the wire.
func (b upstreamBase) prepare(ctx context.Context) (map[string]string, error) {
	headers, err := b.credential.AuthorizationHeader()
	if err != nil {
		return nil, err
	}
	if err := b.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	return headers, nil
}

func toAPIError(resp *httpclient.BaseResponse) error {
	var errResp dto.ErrorResponse
	_ = json.Unmarshal(resp.Body, &errResp)
	return &dto.APIError{StatusCode: resp.StatusCode, Detail: errResp.Message()}
}
