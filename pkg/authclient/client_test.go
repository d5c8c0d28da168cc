package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, RefreshPath, r.URL.Path)

		rc, err := r.Cookie(tokens.RefreshCookie)
		switch {
		case err != nil:
			w.WriteHeader(http.StatusBadRequest)
		case rc.Value == "revoked":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"session revoked"}`))
		case rc.Value == "down":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream unavailable\nmore"))
		case rc.Value == "half":
			_ = json.NewEncoder(w).Encode(RefreshResponse{AccessToken: "a-2"})
		default:
			ac, _ := r.Cookie(tokens.AccessCookie)
			access := ""
			if ac != nil {
				access = ac.Value
			}
			_ = json.NewEncoder(w).Encode(RefreshResponse{
				AccessToken:  "a-2:" + access,
				RefreshToken: "r-2",
				AccessExp:    100,
				RefreshExp:   200,
				IsAdmin:      true,
			})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRefreshTokens(t *testing.T) {
	t.Parallel()

	c := NewClient(newAuthServer(t).URL + "/")
	ctx := context.Background()

	resp, err := c.RefreshTokens(ctx, "r-1", "a-1")
	require.NoError(t, err)
	assert.Equal(t, "a-2:a-1", resp.AccessToken)
	assert.Equal(t, "r-2", resp.RefreshToken)
	assert.Equal(t, int64(100), resp.AccessExp)
	assert.True(t, resp.IsAdmin)

	tests := []struct {
		name    string
		refresh string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "revoked",
			refresh: "revoked",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrRejected)
				assert.Contains(t, err.Error(), "session revoked")
			},
		},
		{
			name:    "empty refresh token",
			refresh: "",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrRejected)
			},
		},
		{
			name:    "upstream failure",
			refresh: "down",
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusBadGateway, se.Code)
				assert.Equal(t, "upstream unavailable", se.Message)
				assert.NotErrorIs(t, err, ErrRejected)
			},
		},
		{
			name:    "incomplete pair",
			refresh: "half",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "incomplete")
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := c.RefreshTokens(ctx, tt.refresh, "a-1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestRefreshTokens_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewClient("").RefreshTokens(context.Background(), "r", "a")
	require.Error(t, err)

	var nilClient *Client
	_, err = nilClient.RefreshTokens(context.Background(), "r", "a")
	require.Error(t, err)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	c := NewClient("http://auth", WithTimeout(time.Second))
	assert.Equal(t, time.Second, c.httpClient.Timeout)

	c = NewClient("http://auth", WithTimeout(0))
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	hc := &http.Client{}
	c = NewClient("http://auth", WithHTTPClient(hc))
	assert.Same(t, hc, c.httpClient)
}
