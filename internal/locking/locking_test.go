package locking

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Lock(ctx, "controller-1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxInside)
	assert.Zero(t, k.held())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	releaseA, err := k.Lock(ctx, "a")
	require.NoError(t, err)
	releaseB, err := k.Lock(ctx, "b")
	require.NoError(t, err)

	releaseA()
	releaseA()
	releaseB()
	assert.Zero(t, k.held())
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	k := NewKeyedMutex()

	release, err := k.Lock(context.Background(), "busy")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = k.Lock(ctx, "busy")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, k.held())
}

// Runs only when a redis server is reachable at SENSORHUB_TEST_REDIS_ADDR.
func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("SENSORHUB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SENSORHUB_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	l := NewRedisLocker(client, time.Second)
	ctx := context.Background()
	require.NoError(t, l.Ping(ctx))

	release, err := l.Lock(ctx, "controller-x")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "controller-x")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release2, err := l.Lock(ctx, "controller-x")
	require.NoError(t, err)
	release2()
}

func TestLockAllDedupesAndReleases(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	release, err := LockAll(ctx, k, "b", "", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, k.held())

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(short, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()
	assert.Zero(t, k.held())
}

func TestLockAllReleasesHeldKeysOnFailure(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	busy, err := k.Lock(ctx, "b")
	require.NoError(t, err)
	defer busy()

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = LockAll(short, k, "a", "b")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// "a" was released again; only "b" is still held.
	assert.Equal(t, 1, k.held())
	again, err := k.Lock(ctx, "a")
	require.NoError(t, err)
	again()
}
