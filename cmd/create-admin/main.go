// Command create-admin provisions a user with the admin role, which the HTTP
// API has no endpoint for.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/sqlite"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// passwordEnv is read when -password is empty.
const passwordEnv = "TASKS_ADMIN_PASSWORD"

func main() {
	username := flag.String("username", "", "Username of the admin account")
	password := flag.String("password", "", "Password of the admin account (or set "+passwordEnv+")")
	flag.Parse()

	pw := *password
	if pw == "" {
		pw = os.Getenv(passwordEnv)
	}

	if err := run(context.Background(), *username, pw); err != nil {
		fmt.Fprintf(os.Stderr, "create-admin: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, username, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return err
	}

	users, closeDB, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeDB() }()

	admin, err := createAdmin(ctx, users, auth.NewBcryptHasher(cfg.Auth.BCryptCost), username, password)
	if err != nil {
		return err
	}

	log.Info("admin user created",
		slog.String("user_id", admin.ID.String()),
		slog.String("username", admin.Username))
	return nil
}

// createAdmin validates the credentials, hashes the password and stores a
// user with the admin role.
func createAdmin(
	ctx context.Context,
	users store.UserStore,
	hasher auth.PasswordHasher,
	username, password string,
) (*domain.User, error) {
	user, err := domain.NewUser(username, password)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	hashed, err := hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""
	user.Role = domain.RoleAdmin

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return nil, fmt.Errorf("username %q is already taken", user.Username)
		}
		return nil, fmt.Errorf("failed to save admin user: %w", err)
	}
	return user, nil
}

func openUserStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.UserStore, func() error, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return postgres.NewPostgresUserStore(db, log), db.Close, nil

	case "sqlite":
		gdb, err := sqlite.Open(cfg.Database.URL, log)
		if err != nil {
			return nil, nil, err
		}
		db, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
		}
		return sqlite.NewUserStore(gdb, log), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
