// Command skillswap is a terminal demo of the SkillSwap SDK session flow:
// it reuses stored tokens, refreshes expired ones through the shared
// coordinator, falls back to a password login, and fetches the
// authenticated profile through the request pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	tea "charm.land/bubbletea/v2"

	"github.com/DavidOeztuerk/Skillswap-sub002/client"
	"github.com/DavidOeztuerk/Skillswap-sub002/token"
	"github.com/DavidOeztuerk/Skillswap-sub002/tui"
)

var (
	apiURL            string
	email             string
	password          string
	tokenFile         string
	remember          bool
	flagAPIURL        *string
	flagEmail         *string
	flagPassword      *string
	flagTokenFile     *string
	flagRemember      *bool
	configInitialized bool
)

const loginTimeout = 10 * time.Second

func init() {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Define flags (but don't parse yet to avoid conflicts with test flags)
	flagAPIURL = flag.String(
		"api-url",
		"",
		"SkillSwap API base URL (default: http://localhost:5000 or SKILLSWAP_API_URL env)",
	)
	flagEmail = flag.String("email", "", "Account email (required, or set SKILLSWAP_EMAIL env)")
	flagPassword = flag.String(
		"password",
		"",
		"Account password (required for fresh logins, or set SKILLSWAP_PASSWORD env)",
	)
	flagTokenFile = flag.String(
		"token-file",
		"",
		"Token storage file (default: .skillswap-tokens.json or SKILLSWAP_TOKEN_FILE env)",
	)
	flagRemember = flag.Bool(
		"remember",
		false,
		"Persist the session across restarts (durable storage tier)",
	)
}

// initConfig parses flags and initializes configuration
// Separated from init() to avoid conflicts with test flag parsing
func initConfig() {
	if configInitialized {
		return
	}
	configInitialized = true

	flag.Parse()

	// Priority: flag > env > default
	apiURL = getConfig(*flagAPIURL, "SKILLSWAP_API_URL", "http://localhost:5000")
	email = getConfig(*flagEmail, "SKILLSWAP_EMAIL", "")
	password = getConfig(*flagPassword, "SKILLSWAP_PASSWORD", "")
	tokenFile = getConfig(*flagTokenFile, "SKILLSWAP_TOKEN_FILE", ".skillswap-tokens.json")
	remember = *flagRemember || os.Getenv("SKILLSWAP_REMEMBER") == "true"

	if err := client.ValidateBaseURL(apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid SKILLSWAP_API_URL: %v\n", err)
		os.Exit(1)
	}

	// Warn if using HTTP instead of HTTPS
	if strings.HasPrefix(strings.ToLower(apiURL), "http://") {
		fmt.Fprintln(
			os.Stderr,
			"⚠️  WARNING: Using HTTP instead of HTTPS. Tokens will be transmitted in plaintext!",
		)
		fmt.Fprintln(
			os.Stderr,
			"⚠️  This is only safe for local development. Use HTTPS in production.",
		)
		fmt.Fprintln(os.Stderr)
	}

	if email == "" {
		fmt.Println("Error: SKILLSWAP_EMAIL not set. Please provide it via:")
		fmt.Println("  1. Command line flag: -email=<your-email>")
		fmt.Println("  2. Environment variable: SKILLSWAP_EMAIL=<your-email>")
		fmt.Println("  3. .env file: SKILLSWAP_EMAIL=<your-email>")
		os.Exit(1)
	}
}

// getConfig returns value with priority: flag > env > default
func getConfig(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// isTTY reports whether stderr is a character device (interactive terminal).
// We check stderr because the TUI renders to stderr, allowing stdout to be piped.
func isTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func main() {
	initConfig()

	if isTTY() {
		// Run TUI program on stderr so stdout pipes are not corrupted
		m := tui.NewModel()
		// WithInput(nil): disable stdin/keyboard input so BubbleTea skips terminal
		// capability queries (?2026/?2027). Ctrl+C is handled by signal.NotifyContext.
		p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInput(nil))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			}
		}()

		d := tui.NewProgramDisplayer(p)
		d.Banner()
		runErr := run(d, true)
		p.Quit() // let BubbleTea drain terminal query responses before exiting
		wg.Wait()
		if runErr != nil {
			os.Exit(1)
		}
	} else {
		d := tui.NewPlainDisplayer(os.Stderr)
		d.Banner()
		if err := run(d, false); err != nil {
			os.Exit(1)
		}
	}
}

func run(d tui.Displayer, tty bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// In TTY mode the TUI owns stderr; keep log lines out of it.
	log := logrus.New()
	if tty {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.WarnLevel)
	}

	// Session tier in memory, durable tier on disk; -remember picks the tier.
	store := token.NewTiered(token.NewMemoryStore(), token.NewFileStore(tokenFile))

	c, err := client.New(client.DefaultConfig(apiURL), store, client.WithLogger(log))
	if err != nil {
		d.Fatal(err)
		return err
	}

	needLogin := true
	if access := store.AccessToken(); access != "" {
		d.TokensFound()

		if remaining, ok := token.TimeUntilExpiry(access); ok && remaining > 0 {
			d.TokenValid()
			needLogin = false
		} else {
			d.TokenExpired()
			d.Refreshing()

			if _, err := c.Refresher().Refresh(ctx); err != nil {
				if errors.Is(err, client.ErrSessionExpired) {
					d.SessionExpired()
				} else {
					d.RefreshFailed(err)
				}
			} else {
				d.RefreshOK()
				needLogin = false
			}
		}
	} else {
		d.TokensNotFound()
	}

	if needLogin {
		d.LoggingIn(email)
		if err := login(ctx, c, store); err != nil {
			d.Fatal(err)
			return err
		}
		d.LoginOK()
		if remember {
			d.TokenSaved(tokenFile)
		}
	}

	// Keep the token fresh in the background while the session runs.
	scheduler := client.NewScheduler(c)
	scheduler.Start()
	defer scheduler.Stop()

	d.FetchingProfile()
	summary, err := fetchProfile(ctx, c)
	if err != nil {
		d.ProfileFailed(err)
	} else {
		d.ProfileOK(summary)
	}

	access := store.AccessToken()
	preview := access
	if len(preview) > 50 {
		preview = preview[:50]
	}
	remaining, _ := token.TimeUntilExpiry(access)
	d.Done(preview, store.Class().String(), remaining)

	return nil
}

// loginResponse is the login endpoint's token payload.
type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// login performs a password login and stores the resulting pair in the tier
// selected by -remember. Login itself goes through the pipeline with
// SkipAuth: there is no token to attach yet.
func login(ctx context.Context, c *client.Client, store token.Store) error {
	if password == "" {
		return errors.New("SKILLSWAP_PASSWORD not set and no stored session available")
	}

	body := map[string]string{
		"email":    email,
		"password": password,
	}
	opts := &client.RequestOptions{
		SkipAuth: true,
		Timeout:  loginTimeout,
	}

	resp, err := client.Do[loginResponse](ctx, c, "POST", "/api/auth/login", body, opts)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if resp.AccessToken == "" {
		return errors.New("login response contained no access token")
	}

	class := token.Session
	if remember {
		class = token.Permanent
	}
	if err := store.SetTokens(resp.AccessToken, resp.RefreshToken, class); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}
	return nil
}

// profile is the subset of the profile payload shown in the CLI.
type profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// fetchProfile exercises the authenticated pipeline, including transparent
// refresh if the access token was rejected meanwhile.
func fetchProfile(ctx context.Context, c *client.Client) (string, error) {
	p, err := client.Do[profile](ctx, c, "GET", "/api/users/profile", nil, nil)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email, nil
	}
	if p.Email != "" {
		return fmt.Sprintf("%s <%s>", name, p.Email), nil
	}
	return name, nil
}
