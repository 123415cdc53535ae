package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/rias-glitch/rps-arena-go/internal/obslog"
	"github.com/rias-glitch/rps-arena-go/pkg/gamedto"
)

// TokenProvider supplies the current bearer credential, empty when the
// session is not authenticated yet.
type TokenProvider func() string

// Client is the single chokepoint for backend calls. It attaches the
// bearer credential, serializes request/response and classifies
// failures into the package error taxonomy.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	token   TokenProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithTokenProvider(p TokenProvider) Option {
	return func(c *Client) { c.token = p }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 8 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges the host platform's init payload for a bearer token
// and a profile snapshot.
func (c *Client) Login(ctx context.Context, initData string) (*gamedto.AuthResponse, error) {
	req := gamedto.AuthRequest{InitData: initData}
	var resp gamedto.AuthResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/auth/telegram/", req, &resp, false); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: login response without token", ErrBadPayload)
	}
	return &resp, nil
}

// Balance fetches the authoritative coin balance.
func (c *Client) Balance(ctx context.Context) (int64, error) {
	var resp gamedto.BalanceResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/wallet/balance/", struct{}{}, &resp, true); err != nil {
		return 0, err
	}
	return resp.Coins, nil
}

// Transactions fetches the ledger projection, newest first.
func (c *Client) Transactions(ctx context.Context) ([]gamedto.Transaction, error) {
	var resp gamedto.TransactionsResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/wallet/transactions/", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// SubmitMove sends the one submission a round is allowed. Never retried
// here; retry is a fresh player-initiated selection.
func (c *Client) SubmitMove(ctx context.Context, move gamedto.Move, stake int64) (*gamedto.RoundResult, error) {
	req := gamedto.SubmitMoveRequest{Move: move, Stake: stake}
	var resp gamedto.RoundResult
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/match/submit/", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateInvoice asks the backend for a payment invoice link for the
// given coin amount.
func (c *Client) CreateInvoice(ctx context.Context, amount int64) (string, error) {
	req := gamedto.InvoiceRequest{Amount: amount}
	var resp gamedto.InvoiceResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/wallet/stars/invoice/", req, &resp, false); err != nil {
		return "", err
	}
	if resp.InvoiceLink == "" {
		return "", fmt.Errorf("%w: invoice response without link", ErrBadPayload)
	}
	return resp.InvoiceLink, nil
}

// CreateWithdrawal submits a withdrawal request.
func (c *Client) CreateWithdrawal(ctx context.Context, amount int64, wallet string) error {
	req := gamedto.WithdrawalRequest{Amount: amount, Wallet: wallet}
	return c.doJSON(ctx, fasthttp.MethodPost, "/wallet/withdraw/", req, nil, false)
}

// Withdrawals fetches the read-only list of past requests.
func (c *Client) Withdrawals(ctx context.Context) ([]gamedto.Withdrawal, error) {
	var resp gamedto.WithdrawalsResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/wallet/withdrawals/", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Withdrawals, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	url := c.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	if c.token != nil {
		if tok := strings.TrimSpace(c.token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			lastErr = classifyTransport(err)
			if attempt == attempts {
				return lastErr
			}
			obslog.L().Debug("api retry", zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = classifyStatus(status, resp.Body())
			if attempt == attempts || !shouldRetryStatus(status) {
				return lastErr
			}
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("%w: %v", ErrBadPayload, err)
			}
		}
		return nil
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
