package cleanup_test

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/secador-solar/sensorhub/internal/cleanup"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/hubservice"
	"github.com/secador-solar/sensorhub/internal/locking"
	"github.com/secador-solar/sensorhub/internal/models"
	"github.com/secador-solar/sensorhub/internal/repository/postgres"
	"github.com/secador-solar/sensorhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) record(event string) func(id string) {
	return func(id string) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.events = append(l.events, event+":"+id)
	}
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// waitFor waits until the log holds exactly want, in any order.
func (l *eventLog) waitFor(t *testing.T, want ...string) {
	t.Helper()
	want = append([]string(nil), want...)
	sort.Strings(want)
	assert.Eventually(t, func() bool {
		got := l.snapshot()
		sort.Strings(got)
		return assert.ObjectsAreEqual(want, got)
	}, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, want, l.snapshot())
}

// recordingLocker remembers every key it was asked for.
type recordingLocker struct {
	inner locking.Locker
	mu    sync.Mutex
	keys  []string
}

func (r *recordingLocker) Lock(ctx context.Context, key string) (func(), error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	return r.inner.Lock(ctx, key)
}

func (r *recordingLocker) locked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

type brokenLocker struct{}

func (brokenLocker) Lock(context.Context, string) (func(), error) {
	return nil, stderrors.New("redis: connection refused")
}

func setup(t *testing.T) (*hubservice.HubService, *eventLog) {
	t.Helper()
	return setupWithLocker(t, nil)
}

func setupWithLocker(t *testing.T, locker locking.Locker) (*hubservice.HubService, *eventLog) {
	t.Helper()
	db := testutil.NewSQLite(t)
	stamp := testutil.NewStamper()
	svc := hubservice.New(
		postgres.NewControllerRepository(db, stamp),
		postgres.NewEnsayoRepository(db, stamp),
		postgres.NewReadingRepository(db, stamp),
		postgres.NewUserRepository(db, stamp),
		hubservice.Options{Locker: locker},
	)

	log := &eventLog{}
	for _, event := range []string{
		cleanup.EventControllerDeleted,
		cleanup.EventEnsayoDeleted,
		cleanup.EventReadingsDeleted,
		cleanup.EventReadingDeleted,
	} {
		svc.Cleanup.OnCleanup(event, log.record(event))
	}
	return svc, log
}

func TestDeleteGenericEnsayoLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, log := setup(t)

	created, err := svc.CreateController(ctx, models.ControllerCreate{Name: "C1"})
	require.NoError(t, err)

	err = svc.Cleanup.DeleteEnsayo(ctx, created.GenericEnsayo.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Equal(t, errors.ReasonGenericEnsayo, errors.ConflictReasonOf(err))

	generic, err := svc.GetEnsayo(ctx, created.GenericEnsayo.ID)
	require.NoError(t, err)
	assert.Equal(t, created.GenericEnsayo.Name, generic.Name)

	controller, err := svc.GetController(ctx, created.Controller.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Controller.ID, controller.ID)
	assert.Never(t, func() bool { return len(log.snapshot()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestDeleteEnsayo(t *testing.T) {
	ctx := context.Background()
	svc, log := setup(t)

	err := svc.Cleanup.DeleteEnsayo(ctx, models.NewID())
	assert.True(t, errors.IsNotFound(err))

	c1, err := svc.CreateController(ctx, models.ControllerCreate{Name: "C1"})
	require.NoError(t, err)
	e2, err := svc.CreateEnsayo(ctx, models.EnsayoInput{Name: "E2", ControllerID: &c1.Controller.ID})
	require.NoError(t, err)
	_, err = svc.SwitchActiveEnsayo(ctx, c1.Controller.ID, e2.ID)
	require.NoError(t, err)
	r, err := svc.RecordReading(ctx, models.ReadingCreate{ControllerID: c1.Controller.ID, SensorID: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Cleanup.DeleteEnsayo(ctx, e2.ID))
	log.waitFor(t, "ensayo.deleted:"+e2.ID)

	// The reading survives without an ensayo.
	kept, err := svc.GetReading(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.EnsayoID)
}

func TestDeleteControllerCascadesReadings(t *testing.T) {
	ctx := context.Background()
	svc, log := setup(t)

	c1, err := svc.CreateController(ctx, models.ControllerCreate{Name: "C1"})
	require.NoError(t, err)
	controllerID := c1.Controller.ID
	e2, err := svc.CreateEnsayo(ctx, models.EnsayoInput{Name: "E2", ControllerID: &controllerID})
	require.NoError(t, err)

	onGeneric, err := svc.RecordReading(ctx, models.ReadingCreate{ControllerID: controllerID, SensorID: 1})
	require.NoError(t, err)

	_, err = svc.SwitchActiveEnsayo(ctx, controllerID, e2.ID)
	require.NoError(t, err)
	var onE2 []string
	for sensor := 1; sensor <= 3; sensor++ {
		r, err := svc.RecordReading(ctx, models.ReadingCreate{ControllerID: controllerID, SensorID: sensor})
		require.NoError(t, err)
		onE2 = append(onE2, r.ID)
	}

	_, err = svc.Cleanup.DeleteController(ctx, controllerID)
	assert.Equal(t, errors.ReasonHasReadings, errors.ConflictReasonOf(err))
	_, err = svc.GetController(ctx, controllerID)
	require.NoError(t, err)

	require.NoError(t, svc.Cleanup.DeleteReading(ctx, onGeneric.ID))

	deleted, err := svc.Cleanup.DeleteController(ctx, controllerID)
	require.NoError(t, err)
	assert.Equal(t, "C1", deleted.Name)

	for _, id := range onE2 {
		_, err := svc.GetReading(ctx, id)
		assert.True(t, errors.IsNotFound(err), "reading %s should be gone", id)
	}

	_, err = svc.GetEnsayo(ctx, c1.GenericEnsayo.ID)
	assert.True(t, errors.IsNotFound(err))

	orphan, err := svc.GetEnsayo(ctx, e2.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.ControllerID)
	assert.Equal(t, models.EnsayoStopped, orphan.State)

	log.waitFor(t,
		"reading.deleted:"+onGeneric.ID,
		"readings.deleted:"+controllerID,
		"ensayo.deleted:"+c1.GenericEnsayo.ID,
		"controller.deleted:"+controllerID,
	)

	_, err = svc.Cleanup.DeleteController(ctx, controllerID)
	assert.True(t, errors.IsNotFound(err))
}

func TestPanickingHandlerDoesNotBreakDeletion(t *testing.T) {
	ctx := context.Background()
	svc, log := setup(t)
	svc.Cleanup.OnCleanup(cleanup.EventControllerDeleted, func(string) { panic("boom") })

	c1, err := svc.CreateController(ctx, models.ControllerCreate{Name: "C1"})
	require.NoError(t, err)

	_, err = svc.Cleanup.DeleteController(ctx, c1.Controller.ID)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		for _, e := range log.snapshot() {
			if e == "controller.deleted:"+c1.Controller.ID {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestDeleteEnsayoLocksOwningController(t *testing.T) {
	ctx := context.Background()
	locker := &recordingLocker{inner: locking.NewKeyedMutex()}
	svc, _ := setupWithLocker(t, locker)

	c1, err := svc.CreateController(ctx, models.ControllerCreate{Name: "C1"})
	require.NoError(t, err)
	e2, err := svc.CreateEnsayo(ctx, models.EnsayoInput{Name: "E2", ControllerID: &c1.Controller.ID})
	require.NoError(t, err)
	loose, err := svc.CreateEnsayo(ctx, models.EnsayoInput{Name: "sin controlador"})
	require.NoError(t, err)

	before := len(locker.locked())
	require.NoError(t, svc.Cleanup.DeleteEnsayo(ctx, e2.ID))
	assert.Equal(t, []string{cleanup.ControllerLockKey(c1.Controller.ID)}, locker.locked()[before:])

	// An ensayo with no owner has nothing to serialise against.
	before = len(locker.locked())
	require.NoError(t, svc.Cleanup.DeleteEnsayo(ctx, loose.ID))
	assert.Empty(t, locker.locked()[before:])
}

func TestDeleteEnsayoWaitsForControllerLock(t *testing.T) {
	ctx := context.Background()
	locker := locking.NewKeyedMutex()
	svc, _ := setupWithLocker(t, locker)

	c1, err := svc.CreateController(ctx, models.ControllerCreate{Name: "C1"})
	require.NoError(t, err)
	e2, err := svc.CreateEnsayo(ctx, models.EnsayoInput{Name: "E2", ControllerID: &c1.Controller.ID})
	require.NoError(t, err)

	release, err := locker.Lock(ctx, cleanup.ControllerLockKey(c1.Controller.ID))
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	err = svc.Cleanup.DeleteEnsayo(short, e2.ID)
	assert.True(t, errors.IsUnavailable(err))

	release()
	require.NoError(t, svc.Cleanup.DeleteEnsayo(ctx, e2.ID))
}

func TestLockFailureIsUnavailable(t *testing.T) {
	ctx := context.Background()
	healthy, _ := setup(t)
	c1, err := healthy.CreateController(ctx, models.ControllerCreate{Name: "C1"})
	require.NoError(t, err)
	e2, err := healthy.CreateEnsayo(ctx, models.EnsayoInput{Name: "E2", ControllerID: &c1.Controller.ID})
	require.NoError(t, err)

	broken := cleanup.New(healthy.Controllers, healthy.Ensayos, healthy.Readings, brokenLocker{})

	_, err = broken.DeleteController(ctx, c1.Controller.ID)
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))
	apiErr, ok := errors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 503, apiErr.Code)

	err = broken.DeleteEnsayo(ctx, e2.ID)
	assert.True(t, errors.IsUnavailable(err))

	// Nothing was removed.
	_, err = healthy.GetController(ctx, c1.Controller.ID)
	require.NoError(t, err)
	_, err = healthy.GetEnsayo(ctx, e2.ID)
	require.NoError(t, err)
}
