package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ServiceType string

type ObjectType string

type RequestType string

const (
	ServiceEmployee ServiceType = "employee"

	ObjectEngagement ObjectType = "engagement"

	RequestCreate    RequestType = "create"
	RequestEdit      RequestType = "edit"
	RequestTerminate RequestType = "terminate"
	RequestWildcard  RequestType = "*"
)

// RoutingKey classifies an inbound OS2mo AMQP message, e.g.
// "employee.engagement.create".
type RoutingKey struct {
	Service ServiceType
	Object  ObjectType
	Request RequestType
}

func (k RoutingKey) String() string {
	return fmt.Sprintf("%s.%s.%s", k.Service, k.Object, k.Request)
}

func ParseRoutingKey(s string) (RoutingKey, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return RoutingKey{}, fmt.Errorf("invalid routing key %q: expected 3 segments, got %d", s, len(parts))
	}
	request := RequestType(parts[2])
	switch request {
	case RequestCreate, RequestEdit, RequestTerminate, RequestWildcard:
	default:
		return RoutingKey{}, fmt.Errorf("invalid routing key %q: unknown request type %q", s, parts[2])
	}
	return RoutingKey{
		Service: ServiceType(parts[0]),
		Object:  ObjectType(parts[1]),
		Request: request,
	}, nil
}

// Payload is the body of an OS2mo change event. EmployeeUUID identifies the
// affected person and ObjectUUID the engagement the event is about.
type Payload struct {
	EmployeeUUID uuid.UUID `json:"uuid"`
	ObjectUUID   uuid.UUID `json:"object_uuid"`
	Time         time.Time `json:"time"`
}
