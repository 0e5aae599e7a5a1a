package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/events"
	"github.com/iota-uz/engagement-updater/modules/engagement/services"
	"github.com/iota-uz/engagement-updater/pkg/application"
	"github.com/iota-uz/engagement-updater/pkg/httpapi"
)

// triggerRoutingKey classifies manually triggered updates as edits; the
// handler treats creates and edits identically.
var triggerRoutingKey = events.RoutingKey{
	Service: events.ServiceEmployee,
	Object:  events.ObjectEngagement,
	Request: events.RequestEdit,
}

// TriggerController exposes manual backfill endpoints: one engagement, or
// every engagement on the platform.
type TriggerController struct {
	service     *services.UpdaterService
	logger      logrus.FieldLogger
	concurrency int
}

func NewTriggerController(service *services.UpdaterService, logger logrus.FieldLogger, concurrency int) application.Controller {
	if concurrency < 1 {
		concurrency = 1
	}
	return &TriggerController{
		service:     service,
		logger:      logger,
		concurrency: concurrency,
	}
}

func (c *TriggerController) Key() string {
	return "/trigger"
}

func (c *TriggerController) Register(r *mux.Router) {
	r.HandleFunc("/trigger/all", c.triggerAll).Methods(http.MethodPost)
	r.HandleFunc("/trigger/{uuid}", c.triggerSingle).Methods(http.MethodPost)
}

// triggerAll starts a background run over every engagement and returns
// immediately.
func (c *TriggerController) triggerAll(w http.ResponseWriter, r *http.Request) {
	c.logger.Info("Manually triggered update of all engagements")
	go c.runAll(context.Background())
	_ = httpapi.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "Background job triggered"})
}

func (c *TriggerController) runAll(ctx context.Context) {
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)

	for payload, err := range c.service.BulkUpdatePayloads(ctx) {
		if err != nil {
			c.logger.WithError(err).Error("Listing engagements failed; aborting bulk update")
			break
		}
		g.Go(func() error {
			if _, err := c.service.HandleEvent(ctx, triggerRoutingKey, payload); err != nil {
				c.logger.WithError(err).WithField("engagement", payload.ObjectUUID).Error("Bulk update failed for engagement")
			}
			return nil
		})
	}
	_ = g.Wait()
	c.logger.Info("Bulk update finished")
}

// triggerSingle runs the update for one engagement synchronously.
func (c *TriggerController) triggerSingle(w http.ResponseWriter, r *http.Request) {
	engagementID, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_UUID", err.Error(), nil)
		return
	}

	c.logger.WithField("engagement", engagementID).Info("Manually triggered update")

	handled := 0
	for payload, err := range c.service.SingleUpdatePayload(r.Context(), engagementID) {
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "LOOKUP_FAILED", err.Error(), nil)
			return
		}
		if _, err := c.service.HandleEvent(r.Context(), triggerRoutingKey, payload); err != nil {
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "UPDATE_FAILED", err.Error(), nil)
			return
		}
		handled++
	}

	if handled == 0 {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such engagement", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
