package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"bevents/internal/auth"
	"bevents/internal/config"
	"bevents/internal/discovery"
	"bevents/internal/domain"
	"bevents/internal/service"
	"bevents/internal/storage/postgres"
)

type options struct {
	configPath string
	email      string
	password   string
	confirm    string
	signUp     bool
	signOut    bool
	token      string
	screen     string
	query      string
	category   string
	detail     string
	bookmarked string
	checked    string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	flag.StringVar(&opts.email, "email", "", "email to sign in or sign up with")
	flag.StringVar(&opts.password, "password", "", "account password")
	flag.StringVar(&opts.confirm, "confirm", "", "password confirmation for -signup")
	flag.BoolVar(&opts.signUp, "signup", false, "create an account instead of signing in")
	flag.BoolVar(&opts.signOut, "signout", false, "end the saved session")
	flag.StringVar(&opts.token, "token", "", "session token to resume (defaults to the saved one)")
	flag.StringVar(&opts.screen, "screen", "home", "screen to render: home, map or profile")
	flag.StringVar(&opts.query, "q", "", "search query")
	flag.StringVar(&opts.category, "category", "", "category chip: work, social, sports, arts, leisure or top")
	flag.StringVar(&opts.detail, "detail", "", "print the detail view of the event with this id")
	flag.StringVar(&opts.bookmarked, "bookmarked", "", "comma separated ids to mark as bookmarked")
	flag.StringVar(&opts.checked, "checked", "", "comma separated ids to mark as checked")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAuth(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	gate := auth.NewGate(
		postgres.NewUserStore(db),
		postgres.NewSessionStore(db),
		auth.Config{
			Secret:     []byte(cfg.Auth.JWTSecret),
			Issuer:     cfg.Auth.Issuer,
			SessionTTL: cfg.Auth.SessionTTL,
		},
		logger,
	)

	// The first call reports the state before authentication.
	resolved := false
	unsubscribe := gate.Subscribe(func(*domain.User) {
		if !resolved {
			resolved = true
			return
		}
		saveToken(cfg.Auth.TokenFile, gate.Token(), logger)
	})
	defer unsubscribe()

	if err := authenticate(ctx, gate, opts, cfg.Auth.TokenFile); err != nil {
		return err
	}
	if opts.signOut {
		return gate.SignOut(ctx)
	}
	if gate.CurrentSession() == nil {
		return errors.New("sign in to discover campus events (-email, -password)")
	}

	repo := service.NewEventRepository(
		postgres.NewEventStore(db),
		discovery.NewNormalizer(cfg.Discovery.Home, nil),
		logger,
	)

	screen, err := render(ctx, repo, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(screen)
}

// authenticate signs in or up when credentials are given, otherwise resumes
// the saved session if there is one.
func authenticate(ctx context.Context, gate *auth.Gate, opts options, tokenFile string) error {
	switch {
	case opts.signUp:
		form := auth.SignUpForm{Email: opts.email, Password: opts.password, Confirm: opts.confirm}
		if err := form.Validate(); err != nil {
			return err
		}
		_, err := gate.SignUp(ctx, form.Email, form.Password)
		return err
	case opts.email != "" || opts.password != "":
		form := auth.SignInForm{Email: opts.email, Password: opts.password}
		if err := form.Validate(); err != nil {
			return err
		}
		_, err := gate.SignIn(ctx, form.Email, form.Password)
		return err
	}

	token := opts.token
	if token == "" && tokenFile != "" {
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return nil
	}

	if _, err := gate.Resume(ctx, token); err != nil && !errors.Is(err, auth.ErrUnauthorized) {
		return err
	}
	return nil
}

func render(ctx context.Context, repo *service.EventRepository, opts options) (any, error) {
	selector, err := discovery.ParseSelector(opts.category)
	if err != nil {
		return nil, err
	}

	if opts.detail != "" {
		for _, e := range repo.Load(ctx) {
			if e.ID == opts.detail {
				payload, err := discovery.EncodeDetail(e)
				if err != nil {
					return nil, err
				}
				return discovery.DecodeDetail(payload)
			}
		}
		return nil, fmt.Errorf("event %s not found", opts.detail)
	}

	switch opts.screen {
	case "home":
		sel := discovery.NewSelectionState(selector)
		sel.Query = opts.query
		return discovery.HomeView(repo.Load(ctx), sel), nil
	case "map":
		sel := discovery.NewMapState()
		if opts.category != "" {
			sel.Selector = selector
		}
		sel.Query = opts.query
		return discovery.MapView(repo.Load(ctx), sel), nil
	case "profile":
		sel := discovery.NewSelectionState(discovery.SelectNone)
		for _, id := range splitIDs(opts.bookmarked) {
			sel.ToggleBookmark(id)
		}
		for _, id := range splitIDs(opts.checked) {
			sel.ToggleChecked(id)
		}
		return discovery.ProfileView(repo.LoadRecent(ctx, discovery.ProfileFetchLimit), sel), nil
	default:
		return nil, fmt.Errorf("unknown screen %q", opts.screen)
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func saveToken(path, token string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove session token", "error", err)
		}
		return
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		logger.Warn("failed to save session token", "error", err)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}
