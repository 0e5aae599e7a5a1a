package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/engagement-updater/pkg/application"
)

// HealthCheck is one named readiness probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthController struct {
	logger logrus.FieldLogger
	checks []HealthCheck
}

func NewHealthController(logger logrus.FieldLogger, checks ...HealthCheck) application.Controller {
	return &HealthController{
		logger: logger,
		checks: checks,
	}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health/live", c.liveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", c.readiness).Methods(http.MethodGet)
}

// liveness is used as a Kubernetes liveness probe.
func (c *HealthController) liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// readiness reports 204 only when every registered dependency check passes.
func (c *HealthController) readiness(w http.ResponseWriter, r *http.Request) {
	ready := true
	for _, check := range c.checks {
		if err := check.Check(r.Context()); err != nil {
			c.logger.WithError(err).Warnf("%s is not ready", check.Name)
			ready = false
		}
	}
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
