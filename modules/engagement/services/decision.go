package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/details"
	"github.com/iota-uz/engagement-updater/modules/engagement/domain/snapshot"
)

// Action names the single terminal outcome of handling one event.
type Action string

const (
	ActionTerminateNotSupported      Action = "terminate_not_supported"
	ActionValidationError            Action = "validation_error"
	ActionNoRelatedOrgUnits          Action = "no_related_org_units"
	ActionFoundReverseAssociation    Action = "found_reverse_association"
	ActionSkipAlreadyProcessed       Action = "skip_already_processed"
	ActionSuccessProcessedEngagement Action = "success_processed_engagement"
)

// Outcome is a closed set of results; only ProcessedEngagement carries
// payloads. All variants except ValidationFailed are expected, non-error
// control outcomes.
type Outcome interface {
	Action() Action
}

// TerminateNotSupported is returned for "terminate" events before any query
// is issued. Engagement terminations are deliberately unsupported.
type TerminateNotSupported struct{}

func (TerminateNotSupported) Action() Action { return ActionTerminateNotSupported }

// ValidationFailed is returned when the query result fails the snapshot
// cardinality checks. The event is considered handled; no retry follows.
type ValidationFailed struct {
	Err *snapshot.ValidationError
}

func (ValidationFailed) Action() Action { return ActionValidationError }

// NoRelatedOrgUnits is returned when the current org unit has no related
// unit other than itself to move the engagement to.
type NoRelatedOrgUnits struct{}

func (NoRelatedOrgUnits) Action() Action { return ActionNoRelatedOrgUnits }

// FoundReverseAssociation is returned when the other unit already holds an
// association for the employee, meaning a previous run completed fully.
type FoundReverseAssociation struct{}

func (FoundReverseAssociation) Action() Action { return ActionFoundReverseAssociation }

// SkipAlreadyProcessed is returned when the current unit already holds an
// association for the employee.
type SkipAlreadyProcessed struct{}

func (SkipAlreadyProcessed) Action() Action { return ActionSkipAlreadyProcessed }

// ProcessedEngagement carries the two write payloads for the proceed path
// and the dry-run flag that was in effect.
type ProcessedEngagement struct {
	Association details.Association
	Engagement  details.Engagement
	DryRun      bool
}

func (ProcessedEngagement) Action() Action { return ActionSuccessProcessedEngagement }

// DecisionContext is the input of one classification. It is owned entirely
// by one invocation and discarded afterwards.
type DecisionContext struct {
	EmployeeID        uuid.UUID
	EngagementID      uuid.UUID
	Snapshot          *snapshot.Snapshot
	AssociationTypeID uuid.UUID
	DryRun            bool
}

// Decide classifies a validated snapshot into exactly one outcome. The guard
// order matters: the reverse-association check runs before the current-unit
// check, since a reverse association proves a previous run completed fully.
// Decide performs no I/O and never mutates its inputs.
func Decide(dc DecisionContext, now time.Time) Outcome {
	current := dc.Snapshot.OrgUnit

	otherUnit := findRelatedUnit(current.Related, current.UUID)
	if otherUnit == nil {
		return NoRelatedOrgUnits{}
	}

	if findAssociation(otherUnit.Associations, dc.EmployeeID) != nil {
		return FoundReverseAssociation{}
	}

	if findAssociation(current.Associations, dc.EmployeeID) != nil {
		return SkipAlreadyProcessed{}
	}

	return ProcessedEngagement{
		Association: details.NewAssociation(dc.EmployeeID, current.UUID, dc.AssociationTypeID, now),
		Engagement:  details.NewEngagement(dc.EngagementID, dc.EmployeeID, otherUnit.UUID, dc.Snapshot.Engagement),
		DryRun:      dc.DryRun,
	}
}

// findRelatedUnit returns the first related unit that is not the current
// unit, e.g. unit B when the engagement currently sits in unit A.
func findRelatedUnit(related []snapshot.RelatedUnit, currentUUID uuid.UUID) *snapshot.RelatedUnit {
	for i := range related {
		if related[i].UUID != currentUUID {
			return &related[i]
		}
	}
	return nil
}

// findAssociation returns the first association whose employee matches, if
// any. Existence alone decides the outcome, not which association matched.
func findAssociation(associations []snapshot.Association, employeeID uuid.UUID) *snapshot.Association {
	for i := range associations {
		if associations[i].Employee == employeeID {
			return &associations[i]
		}
	}
	return nil
}
