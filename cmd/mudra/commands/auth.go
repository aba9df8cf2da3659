package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/playback"
)

var (
	authNoBrowser bool
	authTimeout   time.Duration
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize mudra against the Spotify account",
	Long: `Run the Spotify authorization-code flow and store the resulting token.

A local listener is started on the redirect URI. The consent page is
opened in the browser; after approving, the token is saved to the
mudra database and refreshed automatically by 'mudra run'.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the consent URL instead of opening it")
	authCmd.Flags().DurationVar(&authTimeout, "timeout", 5*time.Minute, "how long to wait for the browser redirect")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	tok, err := playback.Authorize(ctx, oauthConfig(cfg), func(authURL string) {
		fmt.Fprintf(out, "Open this URL to authorize mudra:\n\n  %s\n\n", authURL)
		if !authNoBrowser {
			openBrowser(authURL)
		}
	})
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}

	if err := st.SaveToken(tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintln(out, "Authorized. Token saved to", st.Path())
	return nil
}

func oauthConfig(cfg *config.Config) *oauth2.Config {
	return playback.OAuth2Config(playback.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.Spotify.RedirectURI,
	}, cfg.Spotify.AuthURL, cfg.Spotify.TokenURL)
}
