// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	secretstore "github.com/dalemusser/stratagroups/internal/app/store/secrets"
	userstore "github.com/dalemusser/stratagroups/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SupervisorEmail == "" {
		logger.Info("no supervisor_email configured; skipping supervisor bootstrap")
	} else if err := ensureSupervisor(ctx, deps, appCfg.SupervisorEmail, appCfg.SupervisorName, appCfg.SupervisorPassword, logger); err != nil {
		return err
	}

	if deps.Jobs != nil {
		deps.Jobs.Start()
	}
	return nil
}

// ensureSupervisor makes sure the account for email exists and carries the
// supervisor flag. It is the only writer of that flag. A non-empty password
// replaces the stored one.
func ensureSupervisor(ctx context.Context, deps DBDeps, email, name, password string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		u, err = users.Create(ctx, email, name)
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			// Another instance created it first.
			u, err = users.GetByEmail(ctx, email)
		} else if err == nil {
			logger.Info("created supervisor user", zap.String("email", u.Email()))
		}
	}
	if err != nil {
		return fmt.Errorf("ensure supervisor %s: %w", email, err)
	}

	if u.IsDeleted() {
		return fmt.Errorf("supervisor account %s is deleted", u.Email())
	}

	if !u.IsSupervisor() {
		if err := users.SetSupervisor(ctx, u.ID(), true); err != nil {
			return fmt.Errorf("promote supervisor %s: %w", u.Email(), err)
		}
		logger.Info("promoted user to supervisor", zap.String("email", u.Email()))
	}

	if password != "" {
		if err := secretstore.New(deps.MongoDatabase).SetPassword(ctx, u.ID(), password); err != nil {
			return fmt.Errorf("set supervisor password: %w", err)
		}
	}
	return nil
}
