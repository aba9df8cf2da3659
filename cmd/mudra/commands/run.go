package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/playback"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

var runFlags struct {
	camera   int
	noWindow bool
	noServer bool
	tray     bool
	addr     string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start gesture control",
	Long: `Open the camera and translate hand gestures into playback commands.

In the preview window press 1-5 or 0 to score the current gesture
against the one you are performing, and q to quit:

  1 palm   2 right   3 left   4 up   5 down   0 none`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runFlags.camera, "camera", -1, "camera device index (overrides camera_id)")
	f.BoolVar(&runFlags.noWindow, "no-window", false, "do not open the preview window")
	f.BoolVar(&runFlags.noServer, "no-server", false, "do not start the status server")
	f.BoolVar(&runFlags.tray, "tray", false, "show the system tray menu")
	f.StringVar(&runFlags.addr, "addr", "", "status server address (overrides server.addr)")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overlays command-line flags on cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("camera") {
		cfg.CameraID = runFlags.camera
	}
	if runFlags.noWindow {
		cfg.Display = false
	}
	if runFlags.noServer {
		cfg.Server.Enabled = false
	}
	if flags.Changed("tray") {
		cfg.Tray = runFlags.tray
	}
	if runFlags.addr != "" {
		cfg.Server.Addr = runFlags.addr
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	// The preview window must be driven from a single OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}
	if cfg.Tray && cfg.Display && runtime.GOOS == "darwin" {
		slog.Warn("the preview window and the tray both need the main thread on macOS; disabling the window")
		cfg.Display = false
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := playback.NewAuthorizedClient(ctx, oauthConfig(cfg), st, cfg.APITimeout.Std())
	if err != nil {
		return err
	}
	controller := playback.NewSpotifyClient(httpClient, cfg.Spotify.APIBase)

	det, err := detector.NewMediaPipeDetector(cfg.Detector)
	if err != nil {
		return fmt.Errorf("hand detector unavailable: %w", err)
	}

	var disp display.Display = display.NewHeadless()
	if cfg.Display {
		disp = display.NewWindow(display.Title)
	}

	var (
		hub      *server.Hub
		trayMenu *tray.Tray
		events   app.Publishers
	)
	if cfg.Server.Enabled {
		hub = server.NewHub()
		events = append(events, hub)
	}
	if cfg.Tray {
		trayMenu = tray.New()
		events = append(events, trayMenu)
	}

	a, err := app.New(app.Config{
		Camera: capture.NewCamera(capture.Config{
			DeviceID: cfg.CameraID,
			Mirror:   cfg.Mirror,
		}),
		Detector:   det,
		Controller: controller,
		Display:    disp,
		Store:      st,
		Events:     events,
		Output:     cmd.OutOrStdout(),
		Cooldown:   cfg.Cooldown.Std(),
		APITimeout: cfg.APITimeout.Std(),
	})
	if err != nil {
		det.Close()
		return err
	}

	dashboard := ""
	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			StaticDir: cfg.Server.StaticDir,
			Store:     st,
			App:       a,
			Hub:       hub,
		})
		bound := make(chan string, 1)
		go func() {
			err := srv.ListenAndServe(ctx, cfg.Server.Addr, func(addr net.Addr) {
				slog.Info("status server listening", "addr", addr.String())
				bound <- "http://" + addr.String()
			})
			if err != nil {
				slog.Error("status server stopped", "error", err)
				close(bound)
			}
		}()
		dashboard = <-bound
		if dashboard != "" && cfg.Server.StaticDir == "" {
			dashboard += "/api/status"
		}
	}

	if trayMenu == nil {
		return runLoop(ctx, a)
	}
	return runWithTray(ctx, stop, a, trayMenu, dashboard)
}

// runWithTray gives the main thread to the tray and runs the frame loop
// on its own locked thread. Quitting either one stops the other.
func runWithTray(ctx context.Context, stop context.CancelFunc, a *app.App, t *tray.Tray, dashboard string) error {
	t.OnToggle(a.SetEnabled)
	t.OnQuit(stop)
	if dashboard != "" {
		t.OnDashboard(func() { openBrowser(dashboard) })
	}

	errCh := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		errCh <- runLoop(ctx, a)
		t.Quit()
	}()

	t.Run()
	stop()
	return <-errCh
}

func runLoop(ctx context.Context, a *app.App) error {
	err := a.Run(ctx)
	if errors.Is(err, capture.ErrReadFailed) {
		return fmt.Errorf("camera stopped delivering frames: %w", err)
	}
	return err
}
