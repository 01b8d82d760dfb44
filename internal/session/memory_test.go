package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go401-gateway/internal/identity"
)

func testIdentity(n int) identity.Identity {
	return identity.New(identity.Params{
		UserID:     fmt.Sprintf("u%d", n),
		Email:      fmt.Sprintf("user%d@example.com", n),
		Role:       "company_admin",
		CompanyIDs: []string{fmt.Sprintf("c%d", n)},
	})
}

func TestMemoryStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, zap.NewNop())

	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "s1", testIdentity(1)))
	got, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID())

	require.NoError(t, store.Set(ctx, "s1", testIdentity(2)))
	got, _, _ = store.Get(ctx, "s1")
	assert.Equal(t, "u2", got.UserID())

	require.NoError(t, store.Clear(ctx, "s1"))
	_, ok, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx, "never-set"))
}

func TestMemoryStore_RejectsEmptySessionID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, zap.NewNop())

	assert.ErrorIs(t, store.Set(ctx, "", testIdentity(1)), ErrInvalidSession)
	_, _, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, store.Clear(ctx, ""), ErrInvalidSession)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(50*time.Millisecond, zap.NewNop())

	require.NoError(t, store.Set(ctx, "s1", testIdentity(1)))
	time.Sleep(120 * time.Millisecond)

	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, zap.NewNop())

	const sessions = 32
	var wg sync.WaitGroup
	errs := make(chan string, sessions*20)

	for n := 0; n < sessions; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sid := fmt.Sprintf("session-%d", n)
			want := testIdentity(n)
			for i := 0; i < 20; i++ {
				if err := store.Set(ctx, sid, want); err != nil {
					errs <- err.Error()
					return
				}
				got, ok, err := store.Get(ctx, sid)
				if err != nil || !ok || got.UserID() != want.UserID() {
					errs <- fmt.Sprintf("%s saw %q", sid, got.UserID())
				}
			}
		}(n)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
	assert.Equal(t, sessions, store.Len())
}

func TestMemoryStore_ReadsDoNotUndoLogout(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, zap.NewNop())

	tests := []struct {
		name string
		// after runs concurrently with a burst of reads
		after  func() error
		wantOK bool
		wantID string
	}{
		{
			name:  "clear",
			after: func() error { return store.Clear(ctx, "s1") },
		},
		{
			name: "clear then set for another user",
			after: func() error {
				if err := store.Clear(ctx, "s1"); err != nil {
					return err
				}
				return store.Set(ctx, "s1", testIdentity(2))
			},
			wantOK: true,
			wantID: "u2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				require.NoError(t, store.Set(ctx, "s1", testIdentity(1)))

				var wg sync.WaitGroup
				for r := 0; r < 4; r++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						for j := 0; j < 5; j++ {
							_, _, _ = store.Get(ctx, "s1")
						}
					}()
				}
				require.NoError(t, tt.after())
				wg.Wait()

				got, ok, err := store.Get(ctx, "s1")
				require.NoError(t, err)
				require.Equal(t, tt.wantOK, ok, "iteration %d", i)
				if tt.wantOK {
					require.Equal(t, tt.wantID, got.UserID(), "iteration %d", i)
				}
			}
		})
	}
}
