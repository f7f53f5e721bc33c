package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/souleimarejeb/rbac-app/internal/auth"
	"github.com/souleimarejeb/rbac-app/internal/config"
	"github.com/souleimarejeb/rbac-app/internal/db"
	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
	"github.com/souleimarejeb/rbac-app/internal/logger"
	"github.com/souleimarejeb/rbac-app/internal/model"
	"github.com/souleimarejeb/rbac-app/internal/repository"
	"github.com/souleimarejeb/rbac-app/internal/service"
	"github.com/souleimarejeb/rbac-app/internal/validation"
)

const fetchTimeout = 30 * time.Second

func main() {
	source := flag.String("source", "seed/users.json", "JSON array of users: a file path or an http(s) URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	log.Info("starting seed script", slog.String("source", *source))

	gormDB, err := db.NewMySQL(cfg.Database)
	if err != nil {
		logger.Fatal(log, "failed to connect to database", slog.Any("error", err))
	}
	if err := repository.Migrate(gormDB); err != nil {
		logger.Fatal(log, "failed to run migrations", slog.Any("error", err))
	}

	users, err := loadUsers(*source)
	if err != nil {
		logger.Fatal(log, "failed to load users", slog.Any("error", err))
	}
	log.Info("loaded users", slog.Int("count", len(users)))

	hasher := auth.NewPasswordHasher(auth.Argon2Params{
		Memory:      cfg.Hash.Memory,
		Iterations:  cfg.Hash.Iterations,
		Parallelism: cfg.Hash.Parallelism,
		SaltLength:  cfg.Hash.SaltLength,
		KeyLength:   cfg.Hash.KeyLength,
	})
	authService := service.NewAuthService(
		repository.NewUserRepository(gormDB),
		hasher,
		auth.NewJWTService(cfg.JWT.Secret),
		cfg.JWT.AccessTTL,
		log,
	)

	res, err := seedUsers(context.Background(), authService, users, log)
	if err != nil {
		logger.Fatal(log, "failed to seed users", slog.Any("error", err))
	}
	log.Info("seed completed",
		slog.Int("created", res.Created),
		slog.Int("existing", res.Existing),
		slog.Int("skipped", res.Skipped),
	)
}

// seedResult counts what happened to each seeded user.
type seedResult struct {
	Created  int
	Existing int
	Skipped  int
}

// seedUsers signs every valid user up. Users whose username or email is
// already taken are counted as existing; invalid entries are skipped.
func seedUsers(ctx context.Context, svc service.AuthService, users []model.NewUser, log *slog.Logger) (seedResult, error) {
	var res seedResult
	for i, u := range users {
		if err := validation.NewUser(u); err != nil {
			log.Warn("skipping invalid user", slog.Int("index", i), slog.String("username", u.Username), slog.Any("error", err))
			res.Skipped++
			continue
		}

		_, err := svc.SignUp(ctx, u)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, apperrors.ErrConflict):
			res.Existing++
		default:
			return res, fmt.Errorf("sign up %s: %w", u.Username, err)
		}
	}
	return res, nil
}

func loadUsers(source string) ([]model.NewUser, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := &http.Client{Timeout: fetchTimeout}
		resp, err := client.Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	return decodeUsers(r)
}

func decodeUsers(r io.Reader) ([]model.NewUser, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var users []model.NewUser
	if err := dec.Decode(&users); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	return users, nil
}
