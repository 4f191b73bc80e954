package access

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	calls   atomic.Int32
	modules []string
	err     error
	delay   time.Duration
}

func (f *fakeSource) Modules(ctx context.Context, userID string) ([]string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.modules, f.err
}

func newResolver(t *testing.T, src ModuleSource) (*Resolver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResolver(client, src, time.Hour, zap.NewNop()), mr
}

func TestContextHasModuleAccess(t *testing.T) {
	ac := NewContext("u1", []string{"asset", "hr", ""})
	assert.True(t, ac.HasModuleAccess("asset"))
	assert.False(t, ac.HasModuleAccess("investment"))
	assert.Equal(t, []string{"asset", "hr"}, ac.Modules())

	var none *Context
	assert.False(t, none.HasModuleAccess("asset"))
	assert.Empty(t, none.UserID())
}

func TestContextRoundTrip(t *testing.T) {
	ac := NewContext("u1", []string{"asset"})
	ctx := WithContext(context.Background(), ac)
	assert.Same(t, ac, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}

func TestResolveCachesModules(t *testing.T) {
	src := &fakeSource{modules: []string{"asset", "manpower"}}
	r, mr := newResolver(t, src)
	ctx := context.Background()

	ac, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ac.HasModuleAccess("manpower"))

	ac, err = r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ac.HasModuleAccess("asset"))
	assert.Equal(t, int32(1), src.calls.Load())

	assert.True(t, mr.Exists(keyPrefix+"u1"))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"u1"))
}

func TestResolveAfterTTLExpiry(t *testing.T) {
	src := &fakeSource{modules: []string{"asset"}}
	r, mr := newResolver(t, src)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)
	_, err = r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestInvalidate(t *testing.T) {
	src := &fakeSource{modules: []string{"asset"}}
	r, mr := newResolver(t, src)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, r.Invalidate(ctx, "u1"))
	assert.False(t, mr.Exists(keyPrefix+"u1"))

	src.modules = []string{"asset", "hr"}
	ac, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ac.HasModuleAccess("hr"))
	assert.Equal(t, int32(2), src.calls.Load())

	assert.ErrorIs(t, r.Invalidate(ctx, ""), ErrNoUser)
}

func TestResolveCoalescesConcurrentFetches(t *testing.T) {
	src := &fakeSource{modules: []string{"asset"}, delay: 50 * time.Millisecond}
	r, _ := newResolver(t, src)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ac, err := r.Resolve(context.Background(), "u1")
			assert.NoError(t, err)
			assert.True(t, ac.HasModuleAccess("asset"))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestResolveErrors(t *testing.T) {
	boom := errors.New("boom")
	r, mr := newResolver(t, &fakeSource{err: boom})

	_, err := r.Resolve(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(keyPrefix+"u1"))

	_, err = r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestResolveWithoutCache(t *testing.T) {
	src := &fakeSource{modules: []string{"hr"}}
	r := NewResolver(nil, src, time.Hour, zap.NewNop())

	ac, err := r.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ac.HasModuleAccess("hr"))
	assert.NoError(t, r.Invalidate(context.Background(), "u1"))
}

type gatedSource struct {
	entered chan struct{}
	release chan struct{}
	modules []string
}

func (g *gatedSource) Modules(ctx context.Context, userID string) ([]string, error) {
	close(g.entered)
	<-g.release
	return g.modules, nil
}

func TestInvalidateDuringLoadKeepsCacheEmpty(t *testing.T) {
	src := &gatedSource{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		modules: []string{"asset", "hr"},
	}
	r, mr := newResolver(t, src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, "u1")
		done <- err
	}()

	<-src.entered
	require.NoError(t, r.Invalidate(ctx, "u1"))
	close(src.release)
	require.NoError(t, <-done)

	assert.False(t, mr.Exists(keyPrefix+"u1"))
	gen, err := mr.Get(genPrefix + "u1")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestResolveAfterInvalidateCachesAgain(t *testing.T) {
	src := &fakeSource{modules: []string{"asset"}}
	r, mr := newResolver(t, src)
	ctx := context.Background()

	require.NoError(t, r.Invalidate(ctx, "u1"))
	_, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+"u1"))
}
