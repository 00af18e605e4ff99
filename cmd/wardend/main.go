// Package main runs wardend, the HTTP front end of the warden engine.
//
// Endpoints:
//
//	POST /signup       — JSON {"email":"...", "password":"...", "requires2FA":bool}
//	POST /login        — 200 + session cookie, or 206 + {"loginAttemptId":"..."} when 2FA gates the login
//	POST /verify-2fa   — JSON {"email":"...", "loginAttemptId":"...", "2FACode":"..."}; 200 + session cookie
//	POST /verify-token — JSON {"token":"..."}; 200 when the session is live
//	POST /logout       — revokes the session cookie and clears it
//	GET  /me           — guard-protected; returns the authenticated email
//	GET  /metrics      — engine counter snapshot
//
// Backends are selected from the environment: DATABASE_DSN switches the user
// directory to postgres, REDIS_ADDR switches the ledger and challenge store
// to Redis. With neither set, wardend runs fully self-contained on in-memory
// stores plus an in-process miniredis.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	warden "github.com/tobysalz/warden"
	"github.com/tobysalz/warden/middleware"
	"github.com/tobysalz/warden/password"
	"github.com/tobysalz/warden/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("wardend exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, cleanup, err := newRedis(cfg.Redis.Addr)
	if err != nil {
		return err
	}
	defer cleanup()

	engineCfg := warden.DefaultConfig()
	engineCfg.Token.PrivateKey = []byte(cfg.Token.Secret)
	engineCfg.Token.TTL = cfg.Token.TTL

	builder := warden.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithLogger(logger)

	if cfg.Database.DSN != "" {
		hasher, err := password.NewArgon2(password.Config{
			Memory:      engineCfg.Password.Memory,
			Time:        engineCfg.Password.Time,
			Parallelism: engineCfg.Password.Parallelism,
			SaltLength:  engineCfg.Password.SaltLength,
			KeyLength:   engineCfg.Password.KeyLength,
		})
		if err != nil {
			return err
		}
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		builder = builder.WithUserDirectory(postgres.NewDirectory(conn, hasher))
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", signupHandler(engine))
	mux.HandleFunc("POST /login", loginHandler(engine))
	mux.HandleFunc("POST /verify-2fa", verifyTwoFAHandler(engine))
	mux.HandleFunc("POST /verify-token", verifyTokenHandler(engine))
	mux.HandleFunc("POST /logout", logoutHandler(engine))
	mux.HandleFunc("GET /metrics", metricsHandler(engine))

	me := middleware.SessionGuard(engine)(http.HandlerFunc(meHandler))
	mux.Handle("GET /me", me)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// newRedis connects to the configured Redis, or starts an in-process
// miniredis when no address is given.
func newRedis(addr string) (*redis.Client, func(), error) {
	if addr != "" {
		return redis.NewClient(&redis.Options{Addr: addr}), func() {}, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr.Close, nil
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func signupHandler(engine *warden.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email         string `json:"email"`
			Password      string `json:"password"`
			RequiresTwoFA bool   `json:"requires2FA"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		if err := engine.SignUp(r.Context(), body.Email, body.Password, body.RequiresTwoFA); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully!"})
	}
}

func loginHandler(engine *warden.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		result, err := engine.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		if result.TwoFARequired {
			writeJSON(w, http.StatusPartialContent, map[string]string{
				"message":        "2FA required",
				"loginAttemptId": result.ChallengeID,
			})
			return
		}

		setSessionCookie(w, r, result.Token, engine.TokenTTL())
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged in"})
	}
}

func verifyTwoFAHandler(engine *warden.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email          string `json:"email"`
			LoginAttemptID string `json:"loginAttemptId"`
			TwoFACode      string `json:"2FACode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		token, err := engine.VerifyTwoFA(r.Context(), body.Email, body.LoginAttemptID, body.TwoFACode)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		setSessionCookie(w, r, token, engine.TokenTTL())
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged in"})
	}
}

func verifyTokenHandler(engine *warden.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		if _, err := engine.VerifySession(r.Context(), body.Token); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "token is valid"})
	}
}

func logoutHandler(engine *warden.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(middleware.SessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusBadRequest, "missing token")
			return
		}

		if err := engine.Logout(r.Context(), cookie.Value); err != nil {
			writeEngineError(w, err)
			return
		}

		clearSessionCookie(w, r)
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

func meHandler(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email.String()})
}

func metricsHandler(engine *warden.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, engine.Metrics().Counters)
	}
}

// writeEngineError maps the engine error taxonomy onto HTTP status codes.
// Backend detail never reaches the client: ErrUnexpected is a bare 500.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, warden.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "invalid credentials")
	case errors.Is(err, warden.ErrIncorrectCredentials):
		writeError(w, http.StatusUnauthorized, "incorrect credentials")
	case errors.Is(err, warden.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, "user already exists")
	case errors.Is(err, warden.ErrMissingToken):
		writeError(w, http.StatusBadRequest, "missing token")
	case errors.Is(err, warden.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, warden.ErrAlreadyLoggedOut):
		writeError(w, http.StatusBadRequest, "already logged out")
	default:
		writeError(w, http.StatusInternalServerError, "unexpected error")
	}
}

// ---------------------------------------------------------------------------
// Cookie helpers
// ---------------------------------------------------------------------------

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
