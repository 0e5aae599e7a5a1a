package mo

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	graphql "github.com/hasura/go-graphql-client"
	"github.com/pkg/errors"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/snapshot"
	"github.com/iota-uz/engagement-updater/modules/engagement/services"
)

// ErrAssociationTypeNotFound signals that the configured association type
// user key matched no class in MO. It is fatal, not a per-event condition.
var ErrAssociationTypeNotFound = errors.New("association type not found")

// relatedOrgUnitQuery collects the engagement, its current org unit, the
// unit's related units and every association needed by the decision engine,
// plus the fields an eventual engagement edit must copy forward.
const relatedOrgUnitQuery = `
query RelatedOrgUnitQuery($uuids: [UUID!]) {
    engagements(uuids: $uuids) {
        objects {
            org_unit {
                uuid
                related_units {
                    org_units {
                        uuid
                        associations {
                            employee {
                                uuid
                            }
                        }
                    }
                }
                associations {
                    employee {
                        uuid
                    }
                }
            }
            job_function_uuid
            engagement_type_uuid
            primary_uuid
            user_key
            validity {
                from
                to
            }
        }
    }
}`

const associationTypeQuery = `
query AssociationTypeQuery($user_keys: [String!]) {
    classes(user_keys: $user_keys) {
        uuid
    }
}`

const engagementEmployeeQuery = `
query EngagementEmployeeQuery($uuids: [UUID!]) {
    engagements(uuids: $uuids) {
        uuid
        objects {
            employee_uuid
        }
    }
}`

const healthcheckQuery = `
query HealthcheckQuery {
    org {
        uuid
    }
}`

// GraphQLClient executes lookup queries against the MO GraphQL API.
type GraphQLClient struct {
	client *graphql.Client
}

func NewGraphQLClient(moURL string, httpClient *http.Client) *GraphQLClient {
	url := strings.TrimRight(moURL, "/") + "/graphql/v3"
	return &GraphQLClient{
		client: graphql.NewClient(url, httpClient),
	}
}

func (c *GraphQLClient) GetEngagement(ctx context.Context, engagementID uuid.UUID) (snapshot.Response, error) {
	var resp snapshot.Response
	err := c.client.Exec(ctx, relatedOrgUnitQuery, &resp, map[string]interface{}{
		"uuids": []string{engagementID.String()},
	})
	if err != nil {
		return snapshot.Response{}, errors.Wrap(err, "executing RelatedOrgUnitQuery")
	}
	return resp, nil
}

func (c *GraphQLClient) FindAssociationTypeID(ctx context.Context, userKey string) (uuid.UUID, error) {
	var resp struct {
		Classes []struct {
			UUID uuid.UUID `json:"uuid"`
		} `json:"classes"`
	}
	err := c.client.Exec(ctx, associationTypeQuery, &resp, map[string]interface{}{
		"user_keys": []string{userKey},
	})
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "executing AssociationTypeQuery")
	}
	if len(resp.Classes) == 0 {
		return uuid.Nil, errors.Wrapf(ErrAssociationTypeNotFound, "user key %q", userKey)
	}
	return resp.Classes[0].UUID, nil
}

func (c *GraphQLClient) ListEngagements(ctx context.Context, uuids []uuid.UUID) ([]services.EngagementRef, error) {
	variables := map[string]interface{}{
		"uuids": nil,
	}
	if uuids != nil {
		ids := make([]string, 0, len(uuids))
		for _, id := range uuids {
			ids = append(ids, id.String())
		}
		variables["uuids"] = ids
	}

	var resp struct {
		Engagements []struct {
			UUID    uuid.UUID `json:"uuid"`
			Objects []struct {
				EmployeeUUID uuid.UUID `json:"employee_uuid"`
			} `json:"objects"`
		} `json:"engagements"`
	}
	if err := c.client.Exec(ctx, engagementEmployeeQuery, &resp, variables); err != nil {
		return nil, errors.Wrap(err, "executing EngagementEmployeeQuery")
	}

	refs := make([]services.EngagementRef, 0, len(resp.Engagements))
	for _, engagement := range resp.Engagements {
		if len(engagement.Objects) != 1 {
			return nil, errors.Errorf("engagement %s: expected exactly one object, got %d", engagement.UUID, len(engagement.Objects))
		}
		refs = append(refs, services.EngagementRef{
			EngagementID: engagement.UUID,
			EmployeeID:   engagement.Objects[0].EmployeeUUID,
		})
	}
	return refs, nil
}

// Healthcheck verifies the GraphQL connection by querying the organisation
// root.
func (c *GraphQLClient) Healthcheck(ctx context.Context) error {
	var resp struct {
		Org struct {
			UUID uuid.UUID `json:"uuid"`
		} `json:"org"`
	}
	if err := c.client.Exec(ctx, healthcheckQuery, &resp, nil); err != nil {
		return errors.Wrap(err, "executing HealthcheckQuery")
	}
	if resp.Org.UUID == uuid.Nil {
		return errors.New("healthcheck query returned no org uuid")
	}
	return nil
}
