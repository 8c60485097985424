package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/agriconecta/backend/api/responses"
	"github.com/agriconecta/backend/pkg/config"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/logger"
)

// Pinger is the health-check surface of an infrastructure dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live", "env": cfg.App.Env})
	}
}

// HealthReady pings the datasources; any failure flags the instance as not
// ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis Pinger) http.HandlerFunc {
	deps := []struct {
		name   string
		pinger Pinger
	}{
		{"database", db},
		{"redis", redis},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		for _, dep := range deps {
			if dep.pinger == nil {
				continue
			}
			if err := dep.pinger.Ping(ctx); err != nil {
				checks[dep.name] = "down"
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable").WithDetails(checks))
				return
			}
			checks[dep.name] = "up"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
