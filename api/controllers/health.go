package controllers

import (
	"context"
	"net/http"

	"github.com/ahonkala/meepledex-backend/api/responses"
	"github.com/ahonkala/meepledex-backend/pkg/config"
	pkgerrors "github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

// Pinger is the connectivity probe shared by the DB and Redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Meepledex-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Meepledex-Env", cfg.App.Env)
		ctx := r.Context()

		statuses := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "unconfigured"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				statuses[name] = "down"
				healthy = false
				continue
			}
			statuses[name] = "up"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
	}
}

func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}
