package hubservice

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secador-solar/sensorhub/internal/auth"
	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/models"
	"github.com/secador-solar/sensorhub/internal/monitoring"
	"github.com/secador-solar/sensorhub/internal/repository/postgres"
	"github.com/secador-solar/sensorhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, c clock.Clock) *HubService {
	t.Helper()
	db := testutil.NewSQLite(t)
	stamp := testutil.NewStamper()

	svc := New(
		postgres.NewControllerRepository(db, stamp),
		postgres.NewEnsayoRepository(db, stamp),
		postgres.NewReadingRepository(db, stamp),
		postgres.NewUserRepository(db, stamp),
		Options{
			Tokens:     auth.NewTokenIssuer("test-secret", 30*time.Minute, nil),
			Monitoring: monitoring.NewService(),
			Clock:      c,
		},
	)
	require.NoError(t, svc.Validate())
	return svc
}

func createController(t *testing.T, s *HubService, name string) *models.ControllerCreated {
	t.Helper()
	created, err := s.CreateController(context.Background(), models.ControllerCreate{Name: name})
	require.NoError(t, err)
	return created
}

func createEnsayo(t *testing.T, s *HubService, name string, owner string) *models.Ensayo {
	t.Helper()
	e, err := s.CreateEnsayo(context.Background(), models.EnsayoInput{Name: name, ControllerID: &owner})
	require.NoError(t, err)
	return e
}

func reading(controllerID string, sensor int) models.ReadingCreate {
	return models.ReadingCreate{ControllerID: controllerID, SensorID: sensor, Temperature: 25.5, Humidity: 60.0}
}

func TestCreateControllerCreatesGenericEnsayo(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	created := createController(t, s, "  Secador Norte ")
	c, g := created.Controller, created.GenericEnsayo

	assert.Equal(t, "Secador Norte", c.Name)
	assert.Equal(t, models.ControllerActive, c.State)
	assert.Equal(t, g.ID, c.GenericEnsayoID)
	require.NotNil(t, c.ActiveEnsayoID)
	assert.Equal(t, g.ID, *c.ActiveEnsayoID)

	assert.Equal(t, "Ensayo Genérico para Secador Norte", g.Name)
	assert.Equal(t, models.EnsayoStopped, g.State)
	require.NotNil(t, g.ControllerID)
	assert.Equal(t, c.ID, *g.ControllerID)

	stored, err := s.GetEnsayo(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, *stored.ControllerID)

	_, err = s.CreateController(ctx, models.ControllerCreate{Name: "   "})
	assert.True(t, errors.IsValidation(err))
}

func TestScenarioFromRegistrationToDeletion(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	created := createController(t, s, "C1")
	c1, e1 := created.Controller, created.GenericEnsayo

	first, err := s.RecordReading(ctx, reading(c1.ID, 1))
	require.NoError(t, err)
	assert.Equal(t, e1.ID, *first.EnsayoID)

	e2 := createEnsayo(t, s, "E2", c1.ID)
	switched, err := s.SwitchActiveEnsayo(ctx, c1.ID, e2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ControllerInTrial, switched.Controller.State)
	assert.Equal(t, models.EnsayoRunning, switched.Ensayo.State)

	generic, err := s.GetEnsayo(ctx, e1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnsayoStopped, generic.State)

	second, err := s.RecordReading(ctx, reading(c1.ID, 2))
	require.NoError(t, err)
	assert.Equal(t, e2.ID, *second.EnsayoID)

	err = s.DeleteEnsayo(ctx, e1.ID)
	assert.Equal(t, errors.ReasonGenericEnsayo, errors.ConflictReasonOf(err))

	_, err = s.DeleteController(ctx, c1.ID)
	assert.Equal(t, errors.ReasonHasReadings, errors.ConflictReasonOf(err))

	require.NoError(t, s.DeleteReading(ctx, first.ID))
	deleted, err := s.DeleteController(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, deleted.ID)

	_, err = s.GetController(ctx, c1.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestSwitchKeepsSingleRunningEnsayo(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	created := createController(t, s, "C1")
	c1 := created.Controller
	e2 := createEnsayo(t, s, "E2", c1.ID)
	e3 := createEnsayo(t, s, "E3", c1.ID)

	for _, target := range []string{e2.ID, e3.ID, c1.GenericEnsayoID, e2.ID} {
		_, err := s.SwitchActiveEnsayo(ctx, c1.ID, target)
		require.NoError(t, err)

		owned, err := s.ListEnsayos(ctx, models.EnsayoFilters{ControllerID: &c1.ID}, models.DefaultPagination())
		require.NoError(t, err)

		running := 0
		for _, e := range owned {
			if e.State == models.EnsayoRunning {
				running++
				assert.Equal(t, target, e.ID)
			}
		}
		assert.Equal(t, 1, running, "after switching to %s", target)
	}
}

func TestSwitchRejectsForeignAndFinishedEnsayos(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	c1 := createController(t, s, "C1").Controller
	c2 := createController(t, s, "C2").Controller
	foreign := createEnsayo(t, s, "ajeno", c2.ID)

	_, err := s.SwitchActiveEnsayo(ctx, c1.ID, foreign.ID)
	assert.True(t, errors.IsValidation(err))

	_, err = s.SwitchActiveEnsayo(ctx, c1.ID, c2.GenericEnsayoID)
	assert.True(t, errors.IsValidation(err))

	unowned, err := s.CreateEnsayo(ctx, models.EnsayoInput{Name: "sin dueño"})
	require.NoError(t, err)
	_, err = s.SwitchActiveEnsayo(ctx, c1.ID, unowned.ID)
	assert.True(t, errors.IsValidation(err))

	done := createEnsayo(t, s, "terminado", c1.ID)
	finished := models.EnsayoFinished
	_, err = s.UpdateEnsayo(ctx, done.ID, models.EnsayoInput{State: &finished})
	require.NoError(t, err)
	_, err = s.SwitchActiveEnsayo(ctx, c1.ID, done.ID)
	assert.Equal(t, errors.ReasonInvalidTransition, errors.ConflictReasonOf(err))

	_, err = s.SwitchActiveEnsayo(ctx, models.NewID(), done.ID)
	assert.True(t, errors.IsNotFound(err))
	_, err = s.SwitchActiveEnsayo(ctx, c1.ID, models.NewID())
	assert.True(t, errors.IsNotFound(err))

	// Nothing changed on the controller.
	after, err := s.GetController(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ControllerActive, after.State)
	assert.Equal(t, c1.GenericEnsayoID, *after.ActiveEnsayoID)
}

func TestConcurrentSwitchesSerialize(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	c1 := createController(t, s, "C1").Controller
	targets := make([]string, 6)
	for i := range targets {
		targets[i] = createEnsayo(t, s, "E"+strings.Repeat("x", i+1), c1.ID).ID
	}

	var wg sync.WaitGroup
	for _, id := range targets {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.SwitchActiveEnsayo(ctx, c1.ID, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	controller, err := s.GetController(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1+len(targets)), controller.Version)

	owned, err := s.ListEnsayos(ctx, models.EnsayoFilters{ControllerID: &c1.ID}, models.DefaultPagination())
	require.NoError(t, err)
	var running []string
	for _, e := range owned {
		if e.State == models.EnsayoRunning {
			running = append(running, e.ID)
		}
	}
	require.Len(t, running, 1)
	assert.Equal(t, *controller.ActiveEnsayoID, running[0])
}

func TestResolveAssignment(t *testing.T) {
	generic := "g"
	active := "a"

	tests := []struct {
		name       string
		controller *models.Controller
		want       Assignment
		wantErr    bool
	}{
		{
			name:       "active ensayo wins",
			controller: &models.Controller{ActiveEnsayoID: &active, GenericEnsayoID: generic},
			want:       Assignment{EnsayoID: active, Source: monitoring.SourceActive},
		},
		{
			name:       "active generic is reported as generic",
			controller: &models.Controller{ActiveEnsayoID: &generic, GenericEnsayoID: generic},
			want:       Assignment{EnsayoID: generic, Source: monitoring.SourceGeneric},
		},
		{
			name:       "falls back to generic",
			controller: &models.Controller{GenericEnsayoID: generic},
			want:       Assignment{EnsayoID: generic, Source: monitoring.SourceGeneric},
		},
		{
			name:       "neither",
			controller: &models.Controller{ID: "c"},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAssignment(tt.controller)
			if tt.wantErr {
				require.Error(t, err)
				apiErr, ok := errors.AsAPIError(err)
				require.True(t, ok)
				assert.Equal(t, errors.ErrorTypeAssignment, apiErr.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordReading(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)
	created := createController(t, s, "C1")
	c1 := created.Controller

	t.Run("rejects sensor outside 1..4", func(t *testing.T) {
		for _, sensor := range []int{0, 5, -1} {
			_, err := s.RecordReading(ctx, reading(c1.ID, sensor))
			assert.True(t, errors.IsValidation(err), "sensor %d", sensor)
		}
	})

	t.Run("unknown controller", func(t *testing.T) {
		_, err := s.RecordReading(ctx, reading(models.NewID(), 1))
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("battery updates controller", func(t *testing.T) {
		in := reading(c1.ID, 3)
		battery := 71.5
		in.Battery = &battery
		r, err := s.RecordReading(ctx, in)
		require.NoError(t, err)
		assert.False(t, r.Timestamp.IsZero())

		controller, err := s.GetController(ctx, c1.ID)
		require.NoError(t, err)
		require.NotNil(t, controller.Battery)
		assert.Equal(t, 71.5, *controller.Battery)
	})

	t.Run("falls back to generic after active ensayo is deleted", func(t *testing.T) {
		e2 := createEnsayo(t, s, "E2", c1.ID)
		_, err := s.SwitchActiveEnsayo(ctx, c1.ID, e2.ID)
		require.NoError(t, err)
		require.NoError(t, s.DeleteEnsayo(ctx, e2.ID))

		controller, err := s.GetController(ctx, c1.ID)
		require.NoError(t, err)
		assert.Nil(t, controller.ActiveEnsayoID)

		r, err := s.RecordReading(ctx, reading(c1.ID, 4))
		require.NoError(t, err)
		assert.Equal(t, created.GenericEnsayo.ID, *r.EnsayoID)
	})

	expected := `
# HELP sensorhub_readings_ingested_total Readings stored, by how their ensayo was resolved.
# TYPE sensorhub_readings_ingested_total counter
sensorhub_readings_ingested_total{source="generic"} 2
`
	assert.NoError(t, promtest.GatherAndCompare(s.Monitoring.Registry(), strings.NewReader(expected),
		"sensorhub_readings_ingested_total"))
}

func TestReadingsQueriesAreRepeatable(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)
	c1 := createController(t, s, "C1").Controller

	for sensor := 1; sensor <= 4; sensor++ {
		_, err := s.RecordReading(ctx, reading(c1.ID, sensor))
		require.NoError(t, err)
	}

	filters := models.ReadingFilters{ControllerID: &c1.ID}
	first, err := s.ListReadings(ctx, filters, models.DefaultPagination())
	require.NoError(t, err)
	second, err := s.ListReadings(ctx, filters, models.DefaultPagination())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 4)
	assert.Equal(t, 4, first[0].SensorID)

	latest, err := s.GetLatestReading(ctx)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, latest.ID)

	bad := "nope"
	_, err = s.ListReadings(ctx, models.ReadingFilters{EnsayoID: &bad}, models.DefaultPagination())
	assert.True(t, errors.IsValidation(err))
}

func TestGetLatestReadingEmpty(t *testing.T) {
	s := newTestService(t, nil)
	_, err := s.GetLatestReading(context.Background())
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateEnsayoPolicy(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)
	c1 := createController(t, s, "C1").Controller
	c2 := createController(t, s, "C2").Controller
	e := createEnsayo(t, s, "E", c1.ID)

	running := models.EnsayoRunning
	_, err := s.UpdateEnsayo(ctx, e.ID, models.EnsayoInput{State: &running})
	assert.Equal(t, errors.ReasonInvalidTransition, errors.ConflictReasonOf(err))

	_, err = s.CreateEnsayo(ctx, models.EnsayoInput{Name: "x", State: &running})
	assert.True(t, errors.IsValidation(err))

	renamed, err := s.UpdateEnsayo(ctx, e.ID, models.EnsayoInput{Name: "E renombrado", ControllerID: &c2.ID})
	require.NoError(t, err)
	assert.Equal(t, "E renombrado", renamed.Name)
	assert.Equal(t, c2.ID, *renamed.ControllerID)
	assert.Equal(t, models.EnsayoStopped, renamed.State)

	_, err = s.UpdateEnsayo(ctx, c1.GenericEnsayoID, models.EnsayoInput{ControllerID: &c2.ID})
	assert.Equal(t, errors.ReasonGenericEnsayo, errors.ConflictReasonOf(err))

	// The generic ensayo must stay startable.
	finished := models.EnsayoFinished
	genericBefore, err := s.GetEnsayo(ctx, c1.GenericEnsayoID)
	require.NoError(t, err)
	_, err = s.UpdateEnsayo(ctx, c1.GenericEnsayoID, models.EnsayoInput{State: &finished})
	assert.Equal(t, errors.ReasonGenericEnsayo, errors.ConflictReasonOf(err))
	genericAfter, err := s.GetEnsayo(ctx, c1.GenericEnsayoID)
	require.NoError(t, err)
	assert.Equal(t, genericBefore.State, genericAfter.State)
	_, err = s.SwitchActiveEnsayo(ctx, c1.ID, c1.GenericEnsayoID)
	require.NoError(t, err)

	_, err = s.SwitchActiveEnsayo(ctx, c2.ID, e.ID)
	require.NoError(t, err)
	_, err = s.UpdateEnsayo(ctx, e.ID, models.EnsayoInput{ControllerID: &c1.ID})
	assert.Equal(t, errors.ReasonReferencedByController, errors.ConflictReasonOf(err))

	done, err := s.UpdateEnsayo(ctx, e.ID, models.EnsayoInput{State: &finished})
	require.NoError(t, err)
	assert.Equal(t, models.EnsayoFinished, done.State)

	stopped := models.EnsayoStopped
	_, err = s.UpdateEnsayo(ctx, e.ID, models.EnsayoInput{State: &stopped})
	assert.Equal(t, errors.ReasonInvalidTransition, errors.ConflictReasonOf(err))

	// Switching away leaves a finished ensayo finished.
	_, err = s.SwitchActiveEnsayo(ctx, c2.ID, c2.GenericEnsayoID)
	require.NoError(t, err)
	still, err := s.GetEnsayo(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnsayoFinished, still.State)

	missing := models.NewID()
	_, err = s.CreateEnsayo(ctx, models.EnsayoInput{Name: "huérfano", ControllerID: &missing})
	assert.True(t, errors.IsNotFound(err))
}

func TestControllerStatusConnectivity(t *testing.T) {
	ctx := context.Background()
	// Readings are stamped from 2024-05-01 08:00 UTC-5.
	start := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	now := &clock.Fixed{T: start}
	s := newTestService(t, now)
	c1 := createController(t, s, "C1").Controller

	status, err := s.GetControllerStatus(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectivityUnknown, status.Connectivity)
	assert.Nil(t, status.LastActivity)
	require.NotNil(t, status.ActiveEnsayo)
	assert.Equal(t, c1.GenericEnsayoID, status.ActiveEnsayo.ID)

	_, err = s.RecordReading(ctx, reading(c1.ID, 1))
	require.NoError(t, err)

	status, err = s.GetControllerStatus(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectivityOnline, status.Connectivity)
	require.NotNil(t, status.LatestReading)

	now.T = start.Add(10 * time.Minute)
	status, err = s.GetControllerStatus(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectivityAway, status.Connectivity)

	now.T = start.Add(time.Hour)
	status, err = s.GetControllerStatus(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectivityOffline, status.Connectivity)
}

func TestUpdateControllerName(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)
	created := createController(t, s, "C1")

	c, err := s.UpdateControllerName(ctx, created.Controller.ID, "Secador Sur")
	require.NoError(t, err)
	assert.Equal(t, "Secador Sur", c.Name)

	generic, err := s.GetEnsayo(ctx, created.GenericEnsayo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ensayo Genérico para C1", generic.Name)

	_, err = s.UpdateControllerName(ctx, created.Controller.ID, "")
	assert.True(t, errors.IsValidation(err))
	_, err = s.UpdateControllerName(ctx, models.NewID(), "x")
	assert.True(t, errors.IsNotFound(err))
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	user, err := s.Register(ctx, models.UserCreate{Username: "operador", Email: "op@secador.test", Password: "clave"})
	require.NoError(t, err)
	assert.NotEqual(t, "clave", user.PasswordHash)

	_, err = s.Register(ctx, models.UserCreate{Username: "operador", Email: "otro@secador.test", Password: "x"})
	assert.Equal(t, errors.ReasonDuplicateUsername, errors.ConflictReasonOf(err))
	_, err = s.Register(ctx, models.UserCreate{Username: "otro", Email: "op@secador.test", Password: "x"})
	assert.Equal(t, errors.ReasonDuplicateEmail, errors.ConflictReasonOf(err))
	_, err = s.Register(ctx, models.UserCreate{Username: "x", Email: "no-es-correo", Password: "x"})
	assert.True(t, errors.IsValidation(err))

	_, err = s.Login(ctx, models.Credentials{Username: "operador", Password: "mala"})
	assert.True(t, errors.IsAuth(err))
	_, err = s.Login(ctx, models.Credentials{Username: "nadie", Password: "clave"})
	assert.True(t, errors.IsAuth(err))

	token, err := s.Login(ctx, models.Credentials{Username: "operador", Password: "clave"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(1800), token.ExpiresIn)

	verified, err := s.VerifyToken(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	_, err = s.VerifyToken(ctx, token.AccessToken+"x")
	assert.True(t, errors.IsAuth(err))
}
