package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testAdmin = "admin@example.com"

// fakeMedia stands in for the media host and remembers every call.
type fakeMedia struct {
	mu         sync.Mutex
	uploads    []UploadOptions
	destroyed  []string
	uploadErr  error
	destroyErr error
	noHandle   bool
	n          int
}

func (f *fakeMedia) Upload(_ context.Context, r io.Reader, opts UploadOptions) (Asset, error) {
	if _, err := io.ReadAll(r); err != nil {
		return Asset{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return Asset{}, f.uploadErr
	}
	f.n++
	f.uploads = append(f.uploads, opts)
	publicID := fmt.Sprintf("%s/asset%d", opts.Folder, f.n)
	asset := Asset{
		URL:      "https://res.cloudinary.com/demo/image/upload/v1/" + publicID + ".png",
		PublicID: publicID,
	}
	if f.noHandle {
		asset.PublicID = ""
	}
	return asset, nil
}

func (f *fakeMedia) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicID)
	return f.destroyErr
}

func (f *fakeMedia) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeMedia) destroyedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.destroyed...)
}

// countingRepo counts calls that reach the store.
type countingRepo struct {
	Repository
	calls atomic.Int32
}

func (c *countingRepo) Create(ctx context.Context, col Collection, fields Fields) (string, error) {
	c.calls.Add(1)
	return c.Repository.Create(ctx, col, fields)
}

func (c *countingRepo) Update(ctx context.Context, col Collection, id string, fields Fields) error {
	c.calls.Add(1)
	return c.Repository.Update(ctx, col, id, fields)
}

func (c *countingRepo) Delete(ctx context.Context, col Collection, id string) error {
	c.calls.Add(1)
	return c.Repository.Delete(ctx, col, id)
}

func (c *countingRepo) Get(ctx context.Context, col Collection, id string, dest any) error {
	c.calls.Add(1)
	return c.Repository.Get(ctx, col, id, dest)
}

func (c *countingRepo) List(ctx context.Context, col Collection, dest any) error {
	c.calls.Add(1)
	return c.Repository.List(ctx, col, dest)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type testEnv struct {
	store     *Store
	repo      *countingRepo
	media     *fakeMedia
	tokens    *TokenProvider
	guard     *Guard
	metrics   *Metrics
	cleaner   *Cleaner
	portfolio *Portfolio
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newTestStore(t)
	repo := &countingRepo{Repository: store}
	media := &fakeMedia{}
	metrics := NewMetrics()
	tokens := NewTokenProvider("id-secret", "session-secret")
	guard := NewGuard(tokens, testAdmin)
	log := zerolog.Nop()
	cleaner := NewCleaner(media, store, metrics, log, 16, time.Second)
	t.Cleanup(func() { cleaner.Close(context.Background()) })

	portfolio := NewPortfolio(repo, media, cleaner, guard,
		NewReadCache(time.Minute, metrics),
		NewRevalidator("", "", log),
		metrics, log)
	return &testEnv{
		store:     store,
		repo:      repo,
		media:     media,
		tokens:    tokens,
		guard:     guard,
		metrics:   metrics,
		cleaner:   cleaner,
		portfolio: portfolio,
	}
}

// sessionFor signs in email through the token provider and returns the
// session cookie value.
func (e *testEnv) sessionFor(t *testing.T, email string) string {
	t.Helper()
	idToken, err := e.tokens.IssueIDToken("uid-"+email, email)
	require.NoError(t, err)
	session, err := e.tokens.CreateSessionCookie(context.Background(), idToken, sessionTTL)
	require.NoError(t, err)
	return session
}

func (e *testEnv) adminCtx(t *testing.T) context.Context {
	return WithSessionToken(context.Background(), e.sessionFor(t, testAdmin))
}

func (e *testEnv) skills(t *testing.T) []Skill {
	t.Helper()
	var out []Skill
	require.NoError(t, e.store.List(context.Background(), Skills, &out))
	return out
}

var errBoom = errors.New("boom")
