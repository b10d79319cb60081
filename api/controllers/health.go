package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/kinaskak/storefront-backend/api/responses"
	"github.com/kinaskak/storefront-backend/pkg/config"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the datastore and cache are reachable before reporting
// ready. A nil pinger is skipped so the probe works in reduced deployments.
func HealthReady(cfg *config.Config, database, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if database != nil {
			if err := database.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
