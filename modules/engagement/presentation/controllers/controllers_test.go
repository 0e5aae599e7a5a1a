package controllers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/details"
	"github.com/iota-uz/engagement-updater/modules/engagement/domain/snapshot"
	"github.com/iota-uz/engagement-updater/modules/engagement/presentation/controllers"
	"github.com/iota-uz/engagement-updater/modules/engagement/services"
	"github.com/iota-uz/engagement-updater/pkg/application"
)

type stubReader struct {
	resp              snapshot.Response
	associationTypeID uuid.UUID
	refs              []services.EngagementRef
	listErr           error
}

func (r *stubReader) GetEngagement(ctx context.Context, engagementID uuid.UUID) (snapshot.Response, error) {
	return r.resp, nil
}

func (r *stubReader) FindAssociationTypeID(ctx context.Context, userKey string) (uuid.UUID, error) {
	return r.associationTypeID, nil
}

func (r *stubReader) ListEngagements(ctx context.Context, uuids []uuid.UUID) ([]services.EngagementRef, error) {
	return r.refs, r.listErr
}

type stubWriter struct{}

func (stubWriter) CreateAssociation(ctx context.Context, association details.Association) error {
	return nil
}

func (stubWriter) EditEngagement(ctx context.Context, engagement details.Engagement) error {
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func serve(t *testing.T, controller application.Controller, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	controller.Register(router)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func TestIndexController(t *testing.T) {
	recorder := serve(t, controllers.NewIndexController(), http.MethodGet, "/")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"name": "engagement-updater"}`, recorder.Body.String())
}

func TestHealthController_Liveness(t *testing.T) {
	controller := controllers.NewHealthController(testLogger())
	recorder := serve(t, controller, http.MethodGet, "/health/live")
	require.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestHealthController_Readiness(t *testing.T) {
	ok := controllers.HealthCheck{Name: "ok", Check: func(ctx context.Context) error { return nil }}
	failing := controllers.HealthCheck{Name: "failing", Check: func(ctx context.Context) error {
		return errors.New("unreachable")
	}}

	controller := controllers.NewHealthController(testLogger(), ok)
	recorder := serve(t, controller, http.MethodGet, "/health/ready")
	require.Equal(t, http.StatusNoContent, recorder.Code)

	controller = controllers.NewHealthController(testLogger(), ok, failing)
	recorder = serve(t, controller, http.MethodGet, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func newTriggerController(t *testing.T, reader *stubReader) application.Controller {
	t.Helper()
	if reader.associationTypeID == uuid.Nil {
		reader.associationTypeID = uuid.New()
	}
	service, err := services.NewUpdaterService(context.Background(), services.UpdaterOptions{
		Reader:                 reader,
		Writer:                 stubWriter{},
		AssociationTypeUserKey: "engagement-updater",
		DryRun:                 true,
		Logger:                 testLogger(),
	})
	require.NoError(t, err)
	return controllers.NewTriggerController(service, testLogger(), 1)
}

func TestTriggerController_All(t *testing.T) {
	controller := newTriggerController(t, &stubReader{})
	recorder := serve(t, controller, http.MethodPost, "/trigger/all")
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.JSONEq(t, `{"status": "Background job triggered"}`, recorder.Body.String())
}

func TestTriggerController_SingleInvalidUUID(t *testing.T) {
	controller := newTriggerController(t, &stubReader{})
	recorder := serve(t, controller, http.MethodPost, "/trigger/not-a-uuid")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Contains(t, recorder.Body.String(), "INVALID_UUID")
}

func TestTriggerController_SingleNotFound(t *testing.T) {
	controller := newTriggerController(t, &stubReader{})
	recorder := serve(t, controller, http.MethodPost, "/trigger/"+uuid.New().String())
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Contains(t, recorder.Body.String(), "NOT_FOUND")
}

func TestTriggerController_SingleOK(t *testing.T) {
	engagementID := uuid.New()
	currentID := uuid.New()
	reader := &stubReader{
		refs: []services.EngagementRef{{EngagementID: engagementID, EmployeeID: uuid.New()}},
		resp: snapshot.Response{
			Engagements: []snapshot.EngagementWrapper{{
				Objects: []snapshot.EngagementObject{{
					OrgUnit: []snapshot.OrgUnitObject{{
						UUID:         currentID.String(),
						RelatedUnits: []snapshot.RelatedUnitsWrapper{{}},
					}},
					JobFunctionUUID:    uuid.New().String(),
					EngagementTypeUUID: uuid.New().String(),
					UserKey:            "user_key",
					Validity:           snapshot.Validity{From: "2022-12-31"},
				}},
			}},
		},
	}

	controller := newTriggerController(t, reader)
	recorder := serve(t, controller, http.MethodPost, "/trigger/"+engagementID.String())
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status": "OK"}`, recorder.Body.String())
}

func TestTriggerController_SingleLookupFailure(t *testing.T) {
	controller := newTriggerController(t, &stubReader{listErr: errors.New("graphql down")})
	recorder := serve(t, controller, http.MethodPost, "/trigger/"+uuid.New().String())
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Contains(t, recorder.Body.String(), "LOOKUP_FAILED")
}
