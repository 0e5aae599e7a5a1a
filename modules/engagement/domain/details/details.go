package details

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/snapshot"
)

// DateFormat is the day granularity used for validity dates in the MO
// service API.
const DateFormat = "2006-01-02"

type UUIDRef struct {
	UUID uuid.UUID `json:"uuid"`
}

type Validity struct {
	From string  `json:"from"`
	To   *string `json:"to"`
}

// Association is the marker detail left behind in the engagement's original
// org unit once the engagement has been relocated.
type Association struct {
	Type            string   `json:"type"`
	Person          UUIDRef  `json:"person"`
	OrgUnit         UUIDRef  `json:"org_unit"`
	AssociationType UUIDRef  `json:"association_type"`
	Validity        Validity `json:"validity"`
}

// Engagement is the edited engagement detail, re-pointed at another org unit
// with all remaining fields copied from the current engagement.
type Engagement struct {
	Type           string    `json:"type"`
	UUID           uuid.UUID `json:"uuid"`
	Person         UUIDRef   `json:"person"`
	OrgUnit        UUIDRef   `json:"org_unit"`
	JobFunction    UUIDRef   `json:"job_function"`
	EngagementType UUIDRef   `json:"engagement_type"`
	Primary        *UUIDRef  `json:"primary,omitempty"`
	UserKey        string    `json:"user_key"`
	Validity       Validity  `json:"validity"`
}

// NewAssociation builds the marker association for the engagement's current
// org unit. The from date is "now", truncated to day granularity.
func NewAssociation(person, orgUnit, associationType uuid.UUID, now time.Time) Association {
	return Association{
		Type:            "association",
		Person:          UUIDRef{UUID: person},
		OrgUnit:         UUIDRef{UUID: orgUnit},
		AssociationType: UUIDRef{UUID: associationType},
		Validity: Validity{
			From: now.Format(DateFormat),
		},
	}
}

// NewEngagement builds the engagement edit that relocates the engagement to
// otherUnit, copying the immutable fields from the current engagement.
func NewEngagement(engagementID, person, otherUnit uuid.UUID, current snapshot.Engagement) Engagement {
	var primary *UUIDRef
	if current.Primary != nil {
		primary = &UUIDRef{UUID: *current.Primary}
	}
	return Engagement{
		Type:           "engagement",
		UUID:           engagementID,
		Person:         UUIDRef{UUID: person},
		OrgUnit:        UUIDRef{UUID: otherUnit},
		JobFunction:    UUIDRef{UUID: current.JobFunction},
		EngagementType: UUIDRef{UUID: current.EngagementType},
		Primary:        primary,
		UserKey:        current.UserKey,
		Validity: Validity{
			From: current.Validity.From,
		},
	}
}
