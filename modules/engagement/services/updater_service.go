package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/details"
	"github.com/iota-uz/engagement-updater/modules/engagement/domain/events"
	"github.com/iota-uz/engagement-updater/modules/engagement/domain/snapshot"
)

// EngagementRef pairs an engagement with its employee, as returned by the
// platform-wide listing query.
type EngagementRef struct {
	EngagementID uuid.UUID
	EmployeeID   uuid.UUID
}

// EngagementReader is the lookup side of the MO platform boundary.
type EngagementReader interface {
	// GetEngagement returns the raw snapshot graph for one engagement.
	GetEngagement(ctx context.Context, engagementID uuid.UUID) (snapshot.Response, error)
	// FindAssociationTypeID resolves an association type user key to its
	// immutable uuid. Zero matches is an error.
	FindAssociationTypeID(ctx context.Context, userKey string) (uuid.UUID, error)
	// ListEngagements returns engagement/employee pairs for the given
	// engagement uuids, or for all engagements when uuids is nil.
	ListEngagements(ctx context.Context, uuids []uuid.UUID) ([]EngagementRef, error)
}

// ModelWriter is the write side of the MO platform boundary.
type ModelWriter interface {
	CreateAssociation(ctx context.Context, association details.Association) error
	EditEngagement(ctx context.Context, engagement details.Engagement) error
}

type UpdaterOptions struct {
	Reader EngagementReader
	Writer ModelWriter
	// AssociationTypeUserKey is resolved to a uuid once, at construction.
	AssociationTypeUserKey string
	DryRun                 bool
	Logger                 *logrus.Logger
}

// UpdaterService relocates engagements between related org units, leaving a
// marker association behind in the original unit.
type UpdaterService struct {
	reader            EngagementReader
	writer            ModelWriter
	associationTypeID uuid.UUID
	dryRun            bool
	logger            *logrus.Logger
	m                 *metrics

	now func() time.Time
}

// NewUpdaterService resolves the configured association type user key and
// returns a ready service. A user key that resolves to nothing is a
// deployment misconfiguration and fails construction.
func NewUpdaterService(ctx context.Context, opts UpdaterOptions) (*UpdaterService, error) {
	associationTypeID, err := opts.Reader.FindAssociationTypeID(ctx, opts.AssociationTypeUserKey)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving association type %q", opts.AssociationTypeUserKey)
	}
	return &UpdaterService{
		reader:            opts.Reader,
		writer:            opts.Writer,
		associationTypeID: associationTypeID,
		dryRun:            opts.DryRun,
		logger:            opts.Logger,
		m:                 getMetrics(),
		now:               time.Now,
	}, nil
}

// HandleEvent processes one engagement change event to completion and
// returns its outcome unconditionally. Query and write failures are not
// handled here; they propagate so the caller can requeue.
func (s *UpdaterService) HandleEvent(ctx context.Context, key events.RoutingKey, payload events.Payload) (Outcome, error) {
	started := s.now()
	log := s.logger.WithFields(logrus.Fields{
		"engagement": payload.ObjectUUID,
		"employee":   payload.EmployeeUUID,
	})
	log.WithField("routing-key", key.String()).Debug("Message received")
	s.m.eventsTotal.WithLabelValues(string(key.Request)).Inc()

	if key.Request == events.RequestTerminate {
		log.Info("Engagement terminations are not supported")
		return s.finish(started, TerminateNotSupported{}), nil
	}

	resp, err := s.reader.GetEngagement(ctx, payload.ObjectUUID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching engagement snapshot")
	}

	snap, err := snapshot.Parse(resp)
	if err != nil {
		var verr *snapshot.ValidationError
		if errors.As(err, &verr) {
			log.WithError(verr).Info("Query result failed validation")
			return s.finish(started, ValidationFailed{Err: verr}), nil
		}
		return nil, err
	}

	outcome := Decide(DecisionContext{
		EmployeeID:        payload.EmployeeUUID,
		EngagementID:      payload.ObjectUUID,
		Snapshot:          snap,
		AssociationTypeID: s.associationTypeID,
		DryRun:            s.dryRun,
	}, s.now())

	switch o := outcome.(type) {
	case NoRelatedOrgUnits:
		log.Info("No related org unit to move the engagement to, doing nothing")
	case FoundReverseAssociation:
		log.Info("Found association in other unit, doing nothing")
	case SkipAlreadyProcessed:
		log.Info("Already processed this engagement, doing nothing")
	case ProcessedEngagement:
		if err := s.processEngagement(ctx, log, o); err != nil {
			return nil, err
		}
	}

	return s.finish(started, outcome), nil
}

// processEngagement performs (or, on dry runs, logs) the two writes:
// association first, so the original unit's membership marker exists before
// the engagement is moved away from it.
func (s *UpdaterService) processEngagement(ctx context.Context, log logrus.FieldLogger, o ProcessedEngagement) error {
	if o.DryRun {
		log.WithField("association", o.Association).Info("Would create association")
		log.WithField("engagement", o.Engagement).Info("Would update engagement")
		return nil
	}

	if err := s.writer.CreateAssociation(ctx, o.Association); err != nil {
		return errors.Wrap(err, "creating association")
	}
	log.WithField("org-unit", o.Association.OrgUnit.UUID).Info("Created association")

	if err := s.writer.EditEngagement(ctx, o.Engagement); err != nil {
		return errors.Wrap(err, "updating engagement")
	}
	log.WithField("org-unit", o.Engagement.OrgUnit.UUID).Info("Updated engagement")
	return nil
}

func (s *UpdaterService) finish(started time.Time, outcome Outcome) Outcome {
	action := string(outcome.Action())
	s.m.outcomesTotal.WithLabelValues(action).Inc()
	s.m.handleLatency.WithLabelValues(action).Observe(s.now().Sub(started).Seconds())
	return outcome
}
