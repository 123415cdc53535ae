package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rias-glitch/rps-arena-go/pkg/gamedto"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, opts...)
}

func TestHeadersAttached(t *testing.T) {
	var gotAuth, gotReqID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode(gamedto.BalanceResponse{Coins: 10})
	}), WithTokenProvider(func() string { return "tok-123" }))

	coins, err := c.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), coins)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestAuthDeniedClassification(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.SubmitMove(context.Background(), gamedto.MoveRock, 50)
	require.Error(t, err)
	assert.True(t, IsAuthDenied(err))
	assert.False(t, IsTimeout(err))
}

func TestBusinessErrorSurfacedVerbatim(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"insufficient balance"}`))
	}))

	_, err := c.SubmitMove(context.Background(), gamedto.MoveRock, 50)
	require.Error(t, err)
	reason, ok := BusinessReason(err)
	require.True(t, ok)
	assert.Equal(t, "insufficient balance", reason)
}

func TestTimeoutClassification(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}), WithTimeout(50*time.Millisecond))

	_, err := c.SubmitMove(context.Background(), gamedto.MovePaper, 50)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.False(t, IsUnreachable(err))
}

func TestUnreachableClassification(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithTimeout(time.Second))
	_, err := c.Balance(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
	assert.False(t, IsTimeout(err))
}

func TestBadPayloadClassification(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))

	_, err := c.Balance(context.Background())
	require.Error(t, err)
	assert.True(t, IsBadPayload(err))
}

func TestSubmitMoveNeverRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}), WithRetry(3))

	_, err := c.SubmitMove(context.Background(), gamedto.MoveScissors, 50)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "submit-move must issue exactly one request")
}

func TestIdempotentReadRetriesOn5xx(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(gamedto.BalanceResponse{Coins: 77})
	}), WithRetry(3))

	coins, err := c.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(77), coins)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSubmitMoveDecodesResult(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gamedto.SubmitMoveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, gamedto.MoveRock, req.Move)
		assert.Equal(t, int64(50), req.Stake)
		_ = json.NewEncoder(w).Encode(gamedto.RoundResult{
			PlayerMove:   gamedto.MoveRock,
			OpponentMove: gamedto.MoveScissors,
			Outcome:      gamedto.OutcomeWin,
			CoinsDelta:   25,
			RatingDelta:  8,
			NewBalance:   175,
			NewRating:    1028,
		})
	}))

	res, err := c.SubmitMove(context.Background(), gamedto.MoveRock, 50)
	require.NoError(t, err)
	assert.Equal(t, gamedto.OutcomeWin, res.Outcome)
	assert.Equal(t, int64(175), res.NewBalance)
	assert.Equal(t, 1028, res.NewRating)
}
