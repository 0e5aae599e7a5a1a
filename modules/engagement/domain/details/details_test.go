package details_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/details"
	"github.com/iota-uz/engagement-updater/modules/engagement/domain/snapshot"
)

func TestNewAssociation(t *testing.T) {
	person := uuid.New()
	orgUnit := uuid.New()
	associationType := uuid.New()
	now := time.Date(2023, 5, 17, 14, 30, 59, 0, time.UTC)

	assoc := details.NewAssociation(person, orgUnit, associationType, now)

	require.Equal(t, "association", assoc.Type)
	require.Equal(t, person, assoc.Person.UUID)
	require.Equal(t, orgUnit, assoc.OrgUnit.UUID)
	require.Equal(t, associationType, assoc.AssociationType.UUID)
	require.Equal(t, "2023-05-17", assoc.Validity.From)
	require.Nil(t, assoc.Validity.To)
}

func TestNewEngagement(t *testing.T) {
	engagementID := uuid.New()
	person := uuid.New()
	otherUnit := uuid.New()
	primary := uuid.New()
	current := snapshot.Engagement{
		JobFunction:    uuid.New(),
		EngagementType: uuid.New(),
		Primary:        &primary,
		UserKey:        "user_key",
		Validity:       snapshot.Validity{From: "2022-12-31"},
	}

	eng := details.NewEngagement(engagementID, person, otherUnit, current)

	require.Equal(t, "engagement", eng.Type)
	require.Equal(t, engagementID, eng.UUID)
	require.Equal(t, person, eng.Person.UUID)
	require.Equal(t, otherUnit, eng.OrgUnit.UUID)
	require.Equal(t, current.JobFunction, eng.JobFunction.UUID)
	require.Equal(t, current.EngagementType, eng.EngagementType.UUID)
	require.NotNil(t, eng.Primary)
	require.Equal(t, primary, eng.Primary.UUID)
	require.Equal(t, "user_key", eng.UserKey)
	require.Equal(t, "2022-12-31", eng.Validity.From)
	require.Nil(t, eng.Validity.To)
}

func TestNewEngagement_NoPrimaryOmitsField(t *testing.T) {
	current := snapshot.Engagement{
		JobFunction:    uuid.New(),
		EngagementType: uuid.New(),
		Validity:       snapshot.Validity{From: "2022-12-31"},
	}

	eng := details.NewEngagement(uuid.New(), uuid.New(), uuid.New(), current)
	require.Nil(t, eng.Primary)

	raw, err := json.Marshal(eng)
	require.NoError(t, err)
	require.NotContains(t, string(raw), `"primary"`)
}
