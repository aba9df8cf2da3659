package e2e

import (
	"context"
	"errors"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// steppingClock advances one second on every call.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func getJSON(t *testing.T, client *http.Client, url string, v any) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, http.StatusOK)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("GET %s decode error = %v", url, err)
	}
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	// palm, then thumb right, then no hand for the rest of the run
	det := detector.NewMockDetector()
	det.SetSequence(
		[]detector.HandLandmarks{detector.OpenPalmLandmarks()},
		[]detector.HandLandmarks{detector.ThumbRightLandmarks()},
		[]detector.HandLandmarks{},
	)
	disp := display.NewHeadless()
	disp.PressAt(1, '1') // palm while palm is stable
	disp.PressAt(3, '0') // none while no hand is visible
	ctrl := playback.NewMockController(50)
	hub := server.NewHub()
	menu := tray.New()
	clock := &steppingClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	application, err := app.New(app.Config{
		Camera:     capture.NewBlankMockCamera(5),
		Detector:   det,
		Controller: ctrl,
		Display:    disp,
		Store:      s,
		Events:     app.Publishers{hub, menu},
		Output:     &strings.Builder{},
		Cooldown:   500 * time.Millisecond,
		APITimeout: time.Second,
		Clock:      clock.Now,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	srv := server.New(server.Config{Store: s, App: application, Hub: hub})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/events", nil)
	if err != nil {
		t.Fatalf("dial events error = %v", err)
	}
	defer conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("Run", func(t *testing.T) {
		err := application.Run(context.Background())
		if !errors.Is(err, capture.ErrReadFailed) {
			t.Fatalf("Run() error = %v, want read failure", err)
		}
		got := ctrl.Calls()
		want := []string{"state", "play", "next"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("controller calls = %v, want %v", got, want)
		}
	})

	t.Run("LiveEvents", func(t *testing.T) {
		var commands []string
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for len(commands) < 2 {
			var ev struct {
				Type string           `json:"type"`
				Data app.DispatchInfo `json:"data"`
			}
			if err := conn.ReadJSON(&ev); err != nil {
				t.Fatalf("read event error = %v (got %v)", err, commands)
			}
			if ev.Type == app.EventDispatch {
				commands = append(commands, ev.Data.Command)
			}
		}
		if commands[0] != "toggle_play_pause" || commands[1] != "next_track" {
			t.Errorf("dispatch events = %v", commands)
		}
	})

	t.Run("Status", func(t *testing.T) {
		var status app.Status
		getJSON(t, client, ts.URL+"/api/status", &status)
		if status.Running {
			t.Error("status.Running = true after Run returned")
		}
		if status.Frames != 5 || status.Dispatches != 2 || status.Trials != 2 || status.Correct != 1 {
			t.Errorf("status = %+v", status)
		}
		if status.LastDispatch == nil || status.LastDispatch.Command != "next_track" {
			t.Errorf("last dispatch = %+v", status.LastDispatch)
		}
	})

	t.Run("History", func(t *testing.T) {
		var list struct {
			Dispatches []struct {
				Label   string `json:"label"`
				Command string `json:"command"`
				Success bool   `json:"success"`
			} `json:"dispatches"`
			Total  int `json:"total"`
			Failed int `json:"failed"`
		}
		getJSON(t, client, ts.URL+"/api/dispatches", &list)
		if list.Total != 2 || list.Failed != 0 || len(list.Dispatches) != 2 {
			t.Fatalf("dispatch list = %+v", list)
		}
		if list.Dispatches[0].Command != "next_track" || list.Dispatches[1].Label != "palm" {
			t.Errorf("dispatches not newest first: %+v", list.Dispatches)
		}
	})

	t.Run("Accuracy", func(t *testing.T) {
		var acc struct {
			Overall struct {
				Total   int `json:"total"`
				Correct int `json:"correct"`
			} `json:"overall"`
			ByExpected map[string]struct {
				Correct int `json:"correct"`
			} `json:"by_expected"`
		}
		getJSON(t, client, ts.URL+"/api/accuracy?session="+application.SessionID(), &acc)
		if acc.Overall.Total != 2 || acc.Overall.Correct != 1 {
			t.Errorf("overall = %+v", acc.Overall)
		}
		if acc.ByExpected["palm"].Correct != 1 || acc.ByExpected["none"].Correct != 0 {
			t.Errorf("by expected = %+v", acc.ByExpected)
		}
	})

	t.Run("Tray", func(t *testing.T) {
		if got := menu.LastText(); got != "Last: right → next_track" {
			t.Errorf("tray last = %q", got)
		}
		if got := menu.AccuracyText(); got != "Accuracy: 1/2 (50.0%)" {
			t.Errorf("tray accuracy = %q", got)
		}
	})
}

func TestE2E_ToggleFromServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	menu := tray.New()
	application, err := app.New(app.Config{
		Camera:     capture.NewBlankMockCamera(0),
		Detector:   detector.NewMockDetector(),
		Controller: playback.NewMockController(50),
		Events:     menu,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	ts := httptest.NewServer(server.New(server.Config{App: application}))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/enabled", strings.NewReader(`{"enabled": false}`))
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("PUT /api/enabled error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if application.IsEnabled() {
		t.Error("app still enabled after PUT")
	}
	if menu.IsEnabled() {
		t.Error("tray toggle not synced")
	}

	var status app.Status
	getJSON(t, ts.Client(), ts.URL+"/api/status", &status)
	if status.Enabled {
		t.Error("status reports enabled")
	}
}
