package snapshot

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError marks a query result that fails the required-cardinality
// checks. It is a terminal per-event condition, not an I/O failure.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return "snapshot: " + e.msg
}

func cardinalityError(field string, got int) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf("expected exactly one %s, got %d", field, got)}
}

func uuidError(field, raw string, err error) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf("invalid %s %q: %v", field, raw, err)}
}

// Response mirrors the raw RelatedOrgUnitQuery result. Lists are kept as-is
// so Parse can enforce cardinality explicitly.
type Response struct {
	Engagements []EngagementWrapper `json:"engagements"`
}

type EngagementWrapper struct {
	Objects []EngagementObject `json:"objects"`
}

type EngagementObject struct {
	OrgUnit            []OrgUnitObject `json:"org_unit"`
	JobFunctionUUID    string          `json:"job_function_uuid"`
	EngagementTypeUUID string          `json:"engagement_type_uuid"`
	PrimaryUUID        *string         `json:"primary_uuid"`
	UserKey            string          `json:"user_key"`
	Validity           Validity        `json:"validity"`
}

type OrgUnitObject struct {
	UUID         string                `json:"uuid"`
	RelatedUnits []RelatedUnitsWrapper `json:"related_units"`
	Associations []AssociationObject   `json:"associations"`
}

type RelatedUnitsWrapper struct {
	OrgUnits []RelatedUnitObject `json:"org_units"`
}

type RelatedUnitObject struct {
	UUID         string              `json:"uuid"`
	Associations []AssociationObject `json:"associations"`
}

type AssociationObject struct {
	Employee []EmployeeObject `json:"employee"`
}

type EmployeeObject struct {
	UUID string `json:"uuid"`
}

type Validity struct {
	From string  `json:"from"`
	To   *string `json:"to"`
}

// Snapshot is the validated view of one engagement and its current org unit.
type Snapshot struct {
	Engagement Engagement
	OrgUnit    OrgUnit
}

type Engagement struct {
	JobFunction    uuid.UUID
	EngagementType uuid.UUID
	Primary        *uuid.UUID
	UserKey        string
	Validity       Validity
}

type OrgUnit struct {
	UUID         uuid.UUID
	Associations []Association
	Related      []RelatedUnit
}

type RelatedUnit struct {
	UUID         uuid.UUID
	Associations []Association
}

type Association struct {
	Employee uuid.UUID
}

// Parse validates the raw query result and shapes it into a Snapshot.
// Required-cardinality violations return a *ValidationError; association
// lists may be empty or absent (absent is normalized to empty).
func Parse(resp Response) (*Snapshot, error) {
	wrapper, err := one(resp.Engagements, "engagement")
	if err != nil {
		return nil, err
	}
	obj, err := one(wrapper.Objects, "engagement object")
	if err != nil {
		return nil, err
	}
	unitObj, err := one(obj.OrgUnit, "org unit")
	if err != nil {
		return nil, err
	}
	relatedWrapper, err := one(unitObj.RelatedUnits, "related-units wrapper")
	if err != nil {
		return nil, err
	}

	unitID, err := parseUUID("org unit uuid", unitObj.UUID)
	if err != nil {
		return nil, err
	}
	associations, err := parseAssociations(unitObj.Associations)
	if err != nil {
		return nil, err
	}

	related := make([]RelatedUnit, 0, len(relatedWrapper.OrgUnits))
	for _, ru := range relatedWrapper.OrgUnits {
		ruID, err := parseUUID("related org unit uuid", ru.UUID)
		if err != nil {
			return nil, err
		}
		ruAssociations, err := parseAssociations(ru.Associations)
		if err != nil {
			return nil, err
		}
		related = append(related, RelatedUnit{UUID: ruID, Associations: ruAssociations})
	}

	engagement, err := parseEngagement(obj)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Engagement: engagement,
		OrgUnit: OrgUnit{
			UUID:         unitID,
			Associations: associations,
			Related:      related,
		},
	}, nil
}

func parseEngagement(obj EngagementObject) (Engagement, error) {
	jobFunction, err := parseUUID("job function uuid", obj.JobFunctionUUID)
	if err != nil {
		return Engagement{}, err
	}
	engagementType, err := parseUUID("engagement type uuid", obj.EngagementTypeUUID)
	if err != nil {
		return Engagement{}, err
	}
	var primary *uuid.UUID
	if obj.PrimaryUUID != nil && *obj.PrimaryUUID != "" {
		id, err := parseUUID("primary uuid", *obj.PrimaryUUID)
		if err != nil {
			return Engagement{}, err
		}
		primary = &id
	}
	return Engagement{
		JobFunction:    jobFunction,
		EngagementType: engagementType,
		Primary:        primary,
		UserKey:        obj.UserKey,
		Validity:       obj.Validity,
	}, nil
}

func parseAssociations(objs []AssociationObject) ([]Association, error) {
	associations := make([]Association, 0, len(objs))
	for _, obj := range objs {
		employee, err := one(obj.Employee, "association employee")
		if err != nil {
			return nil, err
		}
		employeeID, err := parseUUID("association employee uuid", employee.UUID)
		if err != nil {
			return nil, err
		}
		associations = append(associations, Association{Employee: employeeID})
	}
	return associations, nil
}

func one[T any](items []T, field string) (T, error) {
	if len(items) != 1 {
		var zero T
		return zero, cardinalityError(field, len(items))
	}
	return items[0], nil
}

func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, uuidError(field, raw, err)
	}
	return id, nil
}
