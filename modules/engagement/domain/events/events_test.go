package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseRoutingKey(t *testing.T) {
	key, err := ParseRoutingKey("employee.engagement.create")
	require.NoError(t, err)
	require.Equal(t, ServiceEmployee, key.Service)
	require.Equal(t, ObjectEngagement, key.Object)
	require.Equal(t, RequestCreate, key.Request)
	require.Equal(t, "employee.engagement.create", key.String())
}

func TestParseRoutingKey_Invalid(t *testing.T) {
	for _, s := range []string{"", "employee.engagement", "employee.engagement.create.extra", "employee.engagement.destroy"} {
		_, err := ParseRoutingKey(s)
		require.Error(t, err, "routing key %q should not parse", s)
	}
}

func TestPayload_Unmarshal(t *testing.T) {
	employeeUUID := uuid.New()
	engagementUUID := uuid.New()
	raw := `{"uuid":"` + employeeUUID.String() + `","object_uuid":"` + engagementUUID.String() + `","time":"2022-12-31T12:00:00Z"}`

	var payload Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	require.Equal(t, employeeUUID, payload.EmployeeUUID)
	require.Equal(t, engagementUUID, payload.ObjectUUID)
	require.Equal(t, 2022, payload.Time.Year())
}
