package app

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/harness"
	"github.com/ayusman/mudra/internal/store"
)

// keyDelayMs is how long each iteration waits for a key press.
const keyDelayMs = 1

// Run drives the frame loop until ctx is canceled, the quit key is pressed
// or the camera stops delivering frames. Each iteration:
//
//  1. read a frame
//  2. detect at most one hand and classify it into the history window
//  3. poll the keyboard for quit or an accuracy trial
//  4. offer the stable label to the dispatcher
//  5. draw the overlay and show the frame
//
// A failed read ends the loop with an error. The camera, detector and
// display are released on return. A final accuracy line is written when
// any trial was recorded.
func (a *App) Run(ctx context.Context) error {
	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.shutdown()

	a.mu.Lock()
	a.status.Running = true
	a.status.StartedAt = a.clock()
	a.mu.Unlock()

	a.logger.Info("gesture control started", "session", a.session.ID())
	fmt.Fprintln(a.config.Output, "Gesture Control Active | "+harness.Usage)

	wasEnabled := a.IsEnabled()
	for ctx.Err() == nil {
		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		enabled := a.IsEnabled()
		if enabled != wasEnabled {
			a.session.Clear()
			wasEnabled = enabled
		}

		quit := a.step(ctx, frame, enabled)
		frame.Close()
		if quit {
			a.logger.Info("quit requested")
			break
		}
	}

	return nil
}

// step processes one frame and reports whether the user asked to quit.
func (a *App) step(ctx context.Context, frame *gocv.Mat, enabled bool) bool {
	var obs Frame
	if enabled {
		hands, err := a.config.Detector.Detect(frame)
		if err != nil {
			if a.detectFailures == 0 {
				a.logger.Warn("hand detection failed", "error", err)
			}
			a.detectFailures++
			obs.Stable, obs.Defined = a.session.Stable()
		} else {
			if a.detectFailures > 0 {
				a.logger.Info("hand detection recovered", "failed_frames", a.detectFailures)
				a.detectFailures = 0
			}
			obs = a.session.Observe(detector.First(hands))
		}
	}

	key := a.config.Display.WaitKey(keyDelayMs)
	if key == harness.QuitKey {
		return true
	}
	var trial *harness.Trial
	if expected, ok := harness.Lookup(key); ok {
		t := a.session.Evaluate(expected)
		trial = &t
		a.recordTrial(t)
	}

	var result *dispatch.Result
	if enabled {
		result = a.session.Dispatch(ctx)
		if result != nil {
			a.recordDispatch(result)
		}
	}

	overlay := display.Overlay{
		Hand:    obs.Hand,
		Gesture: harness.DisplayName(obs.Stable, obs.Defined),
		Paused:  !enabled,
	}
	if err := a.config.Display.Show(frame, overlay); err != nil {
		a.logger.Warn("failed to show frame", "error", err)
	}

	a.updateStatus(obs, trial, result)
	return false
}

func (a *App) recordTrial(t harness.Trial) {
	fmt.Fprintln(a.config.Output, t.String())
	a.publish(EventTrial, trialInfo(t))

	if a.config.Store == nil {
		return
	}
	err := a.config.Store.Trials().Create(&store.Trial{
		SessionID: a.session.ID(),
		Expected:  string(t.Expected),
		Detected:  t.DetectedName(),
		Correct:   t.Correct,
		CreatedAt: a.clock(),
	})
	if err != nil {
		a.logger.Warn("failed to save trial", "error", err)
	}
}

func (a *App) recordDispatch(r *dispatch.Result) {
	info := dispatchInfo(r)
	a.publish(EventDispatch, info)

	if a.config.Store == nil {
		return
	}
	err := a.config.Store.Dispatches().Create(&store.Dispatch{
		ID:        info.ID,
		Label:     info.Label,
		Command:   info.Command,
		Volume:    info.Volume,
		Success:   info.Success,
		Error:     info.Error,
		LatencyMs: info.LatencyMs,
		CreatedAt: info.At,
	})
	if err != nil {
		a.logger.Warn("failed to save dispatch", "error", err)
	}
}

func (a *App) updateStatus(obs Frame, trial *harness.Trial, result *dispatch.Result) {
	a.mu.Lock()
	s := &a.status
	s.Frames++
	s.HandVisible = obs.Hand != nil
	s.Label = string(obs.Label)
	s.Stable = harness.DisplayName(obs.Stable, obs.Defined)
	s.Window = labelStrings(a.session.Window())
	s.DispatchState = a.session.DispatchState().String()
	if trial != nil {
		s.Trials = trial.Counters.Total
		s.Correct = trial.Counters.Correct
		s.Accuracy = trial.Counters.Accuracy()
	}
	if result != nil {
		s.Dispatches++
		if !result.OK() {
			s.Failures++
		}
		s.LastDispatch = dispatchInfo(result)
	}
	frame := struct {
		Label  string   `json:"label"`
		Stable string   `json:"stable"`
		Window []string `json:"window"`
		Hand   bool     `json:"hand"`
	}{s.Label, s.Stable, append([]string(nil), s.Window...), s.HandVisible}
	a.mu.Unlock()

	a.publish(EventFrame, frame)
}

func (a *App) shutdown() {
	a.mu.Lock()
	a.status.Running = false
	a.mu.Unlock()

	if err := a.config.Display.Close(); err != nil {
		a.logger.Warn("error closing display", "error", err)
	}
	if err := a.config.Detector.Close(); err != nil {
		a.logger.Warn("error closing detector", "error", err)
	}
	if err := a.config.Camera.Close(); err != nil {
		a.logger.Warn("error closing camera", "error", err)
	}

	if c := a.session.Counters(); c.Total > 0 {
		fmt.Fprintln(a.config.Output)
		fmt.Fprintln(a.config.Output, c.Summary())
	}
	a.logger.Info("gesture control stopped", "session", a.session.ID())
}
