// Package gateway реализует HTTP-клиент платёжного шлюза IamPort (PortOne):
// получение access-токена, предварительную регистрацию и чтение платежа.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/sportsit/internal/config"
	"github.com/magabrotheeeer/sportsit/internal/lib/metrics"
)

var (
	// ErrGatewayAuth не удалось получить access-токен.
	ErrGatewayAuth = errors.New("gateway authentication failed")
	// ErrGateway ошибка сети или некорректный ответ шлюза.
	ErrGateway = errors.New("gateway request failed")
	// ErrPaymentNotFound шлюз не знает платежа с таким imp_uid.
	ErrPaymentNotFound = errors.New("gateway payment not found")
	// ErrUnauthorized шлюз отверг access-токен (HTTP 401).
	ErrUnauthorized = errors.New("gateway rejected access token")
)

// errStatus ответ со статусом, который имеет смысл повторить.
type errStatus struct {
	code int
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.code)
}

// Client клиент IamPort.
type Client struct {
	apiKey     string
	apiSecret  string
	apiURL     string
	retries    int
	retryDelay time.Duration
	httpClient *http.Client
}

// NewClient создаёт новый клиент IamPort.
func NewClient(cfg config.Gateway) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		apiURL:     strings.TrimRight(cfg.BaseURL, "/"),
		retries:    cfg.RetriesGateway,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{Timeout: cfg.TimeoutGateway},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do выполняет запрос с ограниченным числом повторов. Для идемпотентных
// запросов повторяются сетевые ошибки и ответы 5xx. Неидемпотентный запрос
// повторяется, только если соединение не было установлено и шлюз его не видел.
// Тело ответа с любым другим статусом возвращается вызывающему вместе с кодом.
func (c *Client) do(ctx context.Context, endpoint, method, path, token string, body any, idempotent bool) (int, []byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}

		status, data, err := c.roundTrip(ctx, method, path, token, body)
		if err == nil {
			metrics.GatewayRequests.WithLabelValues(endpoint, "ok").Inc()
			return status, data, nil
		}
		metrics.GatewayRequests.WithLabelValues(endpoint, "error").Inc()
		lastErr = err
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		if !idempotent && !notSent(err) {
			return 0, nil, err
		}
	}
	return 0, nil, lastErr
}

// notSent сообщает, что запрос не ушёл дальше установки соединения.
func notSent(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return 0, nil, &errStatus{code: resp.StatusCode}
	}
	return resp.StatusCode, data, nil
}

// GetToken получает access-токен по ключу и секрету.
func (c *Client) GetToken(ctx context.Context) (*Token, error) {
	const op = "gateway.GetToken"

	status, data, err := c.do(ctx, "get_token", http.MethodPost, "/users/getToken", "",
		TokenRequest{ImpKey: c.apiKey, ImpSecret: c.apiSecret}, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGatewayAuth, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: unexpected status %d", op, ErrGatewayAuth, status)
	}

	var env envelope[Token]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGatewayAuth, err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("%s: %w: code %d: %s", op, ErrGatewayAuth, env.Code, message(env.Message))
	}
	if env.Response == nil || env.Response.AccessToken == "" {
		return nil, fmt.Errorf("%s: %w: access_token is missing", op, ErrGatewayAuth)
	}
	return env.Response, nil
}

// Prepare предварительно регистрирует платёж. Ненулевой code шлюза
// возвращается в ответе, его трактовка остаётся вызывающему.
// Ответ 5xx не повторяется: шлюз мог уже сохранить merchant_uid.
func (c *Client) Prepare(ctx context.Context, token string, reqParams PrepareRequest) (*PrepareResponse, error) {
	const op = "gateway.Prepare"

	status, data, err := c.do(ctx, "prepare", http.MethodPost, "/payments/prepare", token, reqParams, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGateway, err)
	}
	if status == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGateway, ErrUnauthorized)
	}

	var env envelope[Registration]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGateway, err)
	}
	return &PrepareResponse{
		Code:     env.Code,
		Message:  message(env.Message),
		Response: env.Response,
	}, nil
}

// GetPayment читает платёж по imp_uid.
func (c *Client) GetPayment(ctx context.Context, token, impUID string) (*Payment, error) {
	const op = "gateway.GetPayment"

	status, data, err := c.do(ctx, "get_payment", http.MethodGet, "/payments/"+url.PathEscape(impUID), token, nil, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGateway, err)
	}
	if status == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGateway, ErrUnauthorized)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrPaymentNotFound, impUID)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: unexpected status %d", op, ErrGateway, status)
	}

	var env envelope[Payment]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGateway, err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("%s: %w: code %d: %s", op, ErrGateway, env.Code, message(env.Message))
	}
	if env.Response == nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrPaymentNotFound, impUID)
	}
	return env.Response, nil
}

func message(m *string) string {
	if m == nil {
		return ""
	}
	return *m
}
