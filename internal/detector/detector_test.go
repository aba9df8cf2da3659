package detector

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFirst(t *testing.T) {
	t.Run("no hands yields nil", func(t *testing.T) {
		if got := First(nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
		if got := First([]HandLandmarks{}); got != nil {
			t.Errorf("expected nil for empty slice, got %+v", got)
		}
	})

	t.Run("returns a copy of the first hand", func(t *testing.T) {
		hands := []HandLandmarks{OpenPalmLandmarks(), FistLandmarks()}
		got := First(hands)
		if got == nil {
			t.Fatal("expected a hand")
		}
		if got.Points[IndexTip] != hands[0].Points[IndexTip] {
			t.Errorf("expected first hand, got %+v", got.Points[IndexTip])
		}

		got.Points[Wrist].X = 42
		if hands[0].Points[Wrist].X == 42 {
			t.Error("First must not alias the detector's slice")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands on every frame", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})

		for i := 0; i < 3; i++ {
			hands, err := mock.Detect(nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(hands) != 1 {
				t.Errorf("frame %d: expected 1 hand, got %d", i, len(hands))
			}
		}
	})

	t.Run("replays a sequence then holds the last entry", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetSequence(
			[]HandLandmarks{FistLandmarks()},
			nil,
			[]HandLandmarks{OpenPalmLandmarks(), FistLandmarks()},
		)

		want := []int{1, 0, 2, 2, 2}
		for i, n := range want {
			hands, _ := mock.Detect(nil)
			if len(hands) != n {
				t.Errorf("frame %d: expected %d hands, got %d", i, n, len(hands))
			}
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands on error, got %v", hands)
		}
	})

	t.Run("close is recorded", func(t *testing.T) {
		mock := NewMockDetector()
		if err := mock.Close(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() after Close")
		}
	})
}

func TestDecodeResponse(t *testing.T) {
	fullHand := func() string {
		pts := make([]string, NumLandmarks)
		for i := range pts {
			pts[i] = `{"x":0.5,"y":0.5,"z":0}`
		}
		return `{"points":[` + strings.Join(pts, ",") + `],"handedness":"Left","score":0.8}`
	}

	tests := []struct {
		name      string
		line      string
		wantHands int
		wantErr   bool
	}{
		{name: "no hands", line: `{"hands":[]}`, wantHands: 0},
		{name: "one hand", line: `{"hands":[` + fullHand() + `]}`, wantHands: 1},
		{name: "short hand dropped", line: `{"hands":[{"points":[{"x":1,"y":1,"z":0}]}]}`, wantHands: 0},
		{name: "service error", line: `{"error":"decode failed"}`, wantErr: true},
		{name: "garbage", line: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := decodeResponse([]byte(tt.line))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(hands) != tt.wantHands {
				t.Errorf("expected %d hands, got %d", tt.wantHands, len(hands))
			}
			if tt.wantHands == 1 && hands[0].Handedness != "Left" {
				t.Errorf("expected handedness Left, got %q", hands[0].Handedness)
			}
		})
	}
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	_, err := NewMediaPipeDetector(Config{Script: "/nonexistent/mediapipe_service.py"})
	if err == nil {
		t.Fatal("expected error for missing script")
	}
}

func TestMediaPipeDetector_StartFailureBacksOff(t *testing.T) {
	script := filepath.Join(t.TempDir(), "mediapipe_service.py")
	if err := os.WriteFile(script, []byte("# bridge\n"), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := NewMediaPipeDetector(Config{
		MaxHands: 1,
		Script:   script,
		Python:   filepath.Join(t.TempDir(), "no-such-python"),
	})
	if err != nil {
		t.Fatalf("NewMediaPipeDetector() error = %v", err)
	}
	defer d.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d.clock = func() time.Time { return now }

	// The frame is never touched when the process cannot start.
	for i := 0; i < 30; i++ {
		if _, err := d.Detect(nil); err == nil {
			t.Fatal("expected start error")
		}
	}
	if d.starts != 1 {
		t.Errorf("starts = %d within the retry delay, want 1", d.starts)
	}

	now = now.Add(startRetryDelay)
	_, err = d.Detect(nil)
	if err == nil || !strings.Contains(err.Error(), "start mediapipe service") {
		t.Errorf("Detect() error = %v, want start error", err)
	}
	if d.starts != 2 {
		t.Errorf("starts = %d after the retry delay, want 2", d.starts)
	}
}
