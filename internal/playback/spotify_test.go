package playback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest captures what the fake API saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
}

// fakeSpotify serves canned responses and records requests.
type fakeSpotify struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeSpotify) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusNoContent
	}
	if body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (f *fakeSpotify) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newFake(t *testing.T, status int, body string) (*fakeSpotify, *SpotifyClient) {
	t.Helper()
	fake := &fakeSpotify{status: status, body: body}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, NewSpotifyClient(srv.Client(), srv.URL)
}

func TestSpotifyClient_State(t *testing.T) {
	t.Run("active session", func(t *testing.T) {
		fake, c := newFake(t, http.StatusOK, `{
			"is_playing": true,
			"device": {"id": "dev-1", "name": "Kitchen", "volume_percent": 55},
			"item": {"name": "Song"}
		}`)

		st, err := c.State(context.Background())
		require.NoError(t, err)
		require.NotNil(t, st)

		assert.Equal(t, &State{
			IsPlaying:     true,
			DeviceID:      "dev-1",
			DeviceName:    "Kitchen",
			VolumePercent:  55,
			TrackName:      "Song",
			SupportsVolume: true,
		}, st)
		assert.Equal(t, recordedRequest{Method: http.MethodGet, Path: "/v1/me/player"}, fake.last())
	})

	t.Run("no active session", func(t *testing.T) {
		_, c := newFake(t, http.StatusNoContent, "")

		st, err := c.State(context.Background())
		require.NoError(t, err)
		assert.Nil(t, st)
	})

	t.Run("device without volume control", func(t *testing.T) {
		_, c := newFake(t, http.StatusOK, `{"is_playing": false, "device": {"id": "tv", "volume_percent": null}}`)

		st, err := c.State(context.Background())
		require.NoError(t, err)
		assert.False(t, st.SupportsVolume)
		assert.False(t, st.IsPlaying)
	})

	t.Run("device reports volume control disabled", func(t *testing.T) {
		_, c := newFake(t, http.StatusOK, `{"device": {"id": "cast", "volume_percent": 30, "supports_volume": false}}`)

		st, err := c.State(context.Background())
		require.NoError(t, err)
		assert.False(t, st.SupportsVolume)
	})
}

func TestSpotifyClient_Commands(t *testing.T) {
	tests := []struct {
		name string
		call func(c *SpotifyClient) error
		want recordedRequest
	}{
		{"play", func(c *SpotifyClient) error { return c.Play(context.Background()) },
			recordedRequest{Method: http.MethodPut, Path: "/v1/me/player/play"}},
		{"pause", func(c *SpotifyClient) error { return c.Pause(context.Background()) },
			recordedRequest{Method: http.MethodPut, Path: "/v1/me/player/pause"}},
		{"next", func(c *SpotifyClient) error { return c.Next(context.Background()) },
			recordedRequest{Method: http.MethodPost, Path: "/v1/me/player/next"}},
		{"previous", func(c *SpotifyClient) error { return c.Previous(context.Background()) },
			recordedRequest{Method: http.MethodPost, Path: "/v1/me/player/previous"}},
		{"volume with device", func(c *SpotifyClient) error { return c.SetVolume(context.Background(), 40, "dev-1") },
			recordedRequest{Method: http.MethodPut, Path: "/v1/me/player/volume", Query: "device_id=dev-1&volume_percent=40"}},
		{"volume clamps high", func(c *SpotifyClient) error { return c.SetVolume(context.Background(), 105, "") },
			recordedRequest{Method: http.MethodPut, Path: "/v1/me/player/volume", Query: "volume_percent=100"}},
		{"volume clamps low", func(c *SpotifyClient) error { return c.SetVolume(context.Background(), -5, "") },
			recordedRequest{Method: http.MethodPut, Path: "/v1/me/player/volume", Query: "volume_percent=0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, c := newFake(t, http.StatusNoContent, "")
			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.want, fake.last())
		})
	}
}

func TestSpotifyClient_APIError(t *testing.T) {
	_, c := newFake(t, http.StatusNotFound,
		`{"error": {"status": 404, "message": "Player command failed: No active device found", "reason": "NO_ACTIVE_DEVICE"}}`)

	err := c.Next(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NO_ACTIVE_DEVICE", apiErr.Reason)
	assert.Contains(t, apiErr.Error(), "No active device")
}

func TestSpotifyClient_APIErrorWithoutBody(t *testing.T) {
	_, c := newFake(t, http.StatusUnauthorized, "")

	_, err := c.State(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Unauthorized", apiErr.Message)
}

func TestSpotifyClient_CanceledContext(t *testing.T) {
	_, c := newFake(t, http.StatusNoContent, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClampVolume(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-10, 0}, {0, 0}, {55, 55}, {100, 100}, {105, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampVolume(tt.in), "ClampVolume(%d)", tt.in)
	}
}
