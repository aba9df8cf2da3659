package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com"

// SpotifyClient controls a Spotify Connect session through the Web API.
// The supplied http.Client is expected to attach OAuth credentials.
type SpotifyClient struct {
	baseURL string
	client  *http.Client
}

// NewSpotifyClient creates a client. An empty baseURL selects DefaultBaseURL.
func NewSpotifyClient(client *http.Client, baseURL string) *SpotifyClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SpotifyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type playerResponse struct {
	IsPlaying bool `json:"is_playing"`
	Device    struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		VolumePercent  *int   `json:"volume_percent"`
		SupportsVolume *bool  `json:"supports_volume"`
	} `json:"device"`
	Item *struct {
		Name string `json:"name"`
	} `json:"item"`
}

// State returns the current playback session, or nil when nothing is active.
func (c *SpotifyClient) State(ctx context.Context) (*State, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/me/player", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var body playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode player state: %w", err)
	}

	st := &State{
		IsPlaying:  body.IsPlaying,
		DeviceID:   body.Device.ID,
		DeviceName: body.Device.Name,
	}
	if v := body.Device.VolumePercent; v != nil {
		st.VolumePercent = *v
		st.SupportsVolume = body.Device.SupportsVolume == nil || *body.Device.SupportsVolume
	}
	if body.Item != nil {
		st.TrackName = body.Item.Name
	}
	return st, nil
}

// Play resumes playback on the active device.
func (c *SpotifyClient) Play(ctx context.Context) error {
	return c.send(ctx, http.MethodPut, "/v1/me/player/play", nil)
}

// Pause pauses playback on the active device.
func (c *SpotifyClient) Pause(ctx context.Context) error {
	return c.send(ctx, http.MethodPut, "/v1/me/player/pause", nil)
}

// Next skips to the next track.
func (c *SpotifyClient) Next(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/v1/me/player/next", nil)
}

// Previous skips to the previous track.
func (c *SpotifyClient) Previous(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/v1/me/player/previous", nil)
}

// SetVolume sets the volume of deviceID, or of the active device when
// deviceID is empty. percent is clamped to [0,100].
func (c *SpotifyClient) SetVolume(ctx context.Context, percent int, deviceID string) error {
	q := url.Values{}
	q.Set("volume_percent", strconv.Itoa(ClampVolume(percent)))
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	return c.send(ctx, http.MethodPut, "/v1/me/player/volume", q)
}

func (c *SpotifyClient) send(ctx context.Context, method, path string, query url.Values) error {
	resp, err := c.do(ctx, method, path, query)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do performs a request and converts non-2xx responses into *APIError.
func (c *SpotifyClient) do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	return nil, decodeAPIError(resp)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body struct {
		Error struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
			Reason  string `json:"reason"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		apiErr.Message = body.Error.Message
		apiErr.Reason = body.Error.Reason
	}
	return apiErr
}
