package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"taskBoard/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const DefaultBaseURL = "http://localhost:8080"
const BaseURLEnv = "TASKBOARD_API_URL"

const DefaultMaxAttempts = 3
const DefaultBaseDelay = time.Second

// статусы, при которых запрос имеет смысл повторить
var retryableStatuses = map[int]bool{
	http.StatusRequestTimeout:      true, // 408
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// envelope - формат ответа бэкенда: {success, data, error}
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}

// Client выполняет запросы к бэкенду с повторами и линейным backoff.
// Состояния между вызовами не хранит.
type Client struct {
	baseURL     string
	maxAttempts int
	baseDelay   time.Duration
	http        *http.Client
}

type Option func(*Client)

func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

func WithBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.baseDelay = delay
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		http:        &http.Client{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// NewFromEnv берёт адрес бэкенда из TASKBOARD_API_URL,
// при пустой переменной используется локальный адрес разработки
func NewFromEnv(options ...Option) *Client {
	baseURL := os.Getenv(BaseURLEnv)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return New(baseURL, options...)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// linearBackOff - задержка baseDelay * номер попытки
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.base * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return newAPIError(0, "не удалось сериализовать тело запроса: "+err.Error())
		}
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := c.once(ctx, method, fullURL, payload, out)
		if err == nil {
			return nil
		}

		apiErr, ok := err.(*APIError)
		if !ok {
			return backoff.Permanent(err)
		}

		if apiErr.IsConnectivity() || retryableStatuses[apiErr.StatusCode] {
			logger.Warn("Client: Повтор запроса",
				zap.String("method", method),
				zap.String("url", fullURL),
				zap.Int("attempt", attempt),
				zap.Int("status", apiErr.StatusCode))
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{base: c.baseDelay}, uint64(c.maxAttempts-1)),
		ctx,
	)

	return backoff.Retry(operation, policy)
}

// once выполняет ровно один сетевой вызов и разбирает конверт
func (c *Client) once(ctx context.Context, method, fullURL string, payload []byte, out any) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	// некорректный запрос детерминирован, повторять его бессмысленно
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("не удалось создать запрос: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return newAPIError(0, "не удалось соединиться с сервером: "+err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newAPIError(0, "не удалось прочитать ответ: "+err.Error())
	}

	var env envelope

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// пробуем достать сообщение из конверта, иначе HTTP <status>
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Error != nil && *env.Error != "" {
			message = *env.Error
		}
		return newAPIError(resp.StatusCode, message)
	}

	if err := json.Unmarshal(raw, &env); err != nil {
		return newAPIError(resp.StatusCode, "неверный формат ответа: "+err.Error())
	}

	if !env.Success {
		// бэкенд ответил 2xx, но операция не удалась:
		// подставляем синтетический клиентский статус
		message := "операция не удалась"
		if env.Error != nil && *env.Error != "" {
			message = *env.Error
		}
		return newAPIError(http.StatusBadRequest, message)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return newAPIError(resp.StatusCode, "неверный формат данных: "+err.Error())
		}
	}
	return nil
}
