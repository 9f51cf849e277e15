package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafnote/pkg/models"
)

type fakeRemote struct {
	lib        models.Library
	fetchErr   error
	replaceErr error
	replaced   []models.Library
}

func (f *fakeRemote) FetchLibrary(context.Context) (models.Library, error) {
	return f.lib, f.fetchErr
}

func (f *fakeRemote) ReplaceLibrary(_ context.Context, lib models.Library) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, lib)
	return nil
}

func localLib() models.Library {
	return models.Library{
		ReadBooks: []models.ReadItem{
			{ID: "r1", Title: "Dune", Rating: 5, DateRead: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		ToReadBooks: []models.ToReadItem{
			{ID: "t1", Title: "Hyperion", DateAdded: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestReconcileRemoteWins(t *testing.T) {
	remote := &fakeRemote{lib: models.Library{
		ReadBooks:   []models.ReadItem{{ID: "s1", Title: "Foundation", Rating: 4}},
		ToReadBooks: []models.ToReadItem{{ID: "s2", Title: "Ubik"}},
	}}
	adapter := NewAdapter(remote)

	got, err := adapter.Reconcile(context.Background(), localLib(), &Identity{UserID: "u1"})
	require.NoError(t, err)

	// local Dune/Hyperion are gone: remote replaced them wholesale
	require.Len(t, got.ReadBooks, 1)
	assert.Equal(t, "Foundation", got.ReadBooks[0].Title)
	require.Len(t, got.ToReadBooks, 1)
	assert.Equal(t, "Ubik", got.ToReadBooks[0].Title)
	assert.Empty(t, remote.replaced, "non-empty remote must not be written to")
}

func TestReconcileSeedsEmptyRemote(t *testing.T) {
	remote := &fakeRemote{}
	adapter := NewAdapter(remote)

	local := localLib()
	got, err := adapter.Reconcile(context.Background(), local, &Identity{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, local, got, "local stays authoritative when remote was empty")

	require.Len(t, remote.replaced, 1)
	assert.Equal(t, local, remote.replaced[0])
}

func TestReconcileBothEmptyDoesNothing(t *testing.T) {
	remote := &fakeRemote{}
	adapter := NewAdapter(remote)

	got, err := adapter.Reconcile(context.Background(), models.Library{}, &Identity{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, got.ReadBooks)
	assert.Empty(t, remote.replaced)
}

func TestReconcileSeedFailureKeepsLocal(t *testing.T) {
	remote := &fakeRemote{replaceErr: errors.New("schema rejected payload")}
	adapter := NewAdapter(remote)

	local := localLib()
	got, err := adapter.Reconcile(context.Background(), local, &Identity{UserID: "u1"})
	require.NoError(t, err, "seed failures are logged, not surfaced")
	assert.Equal(t, local, got)
}

func TestReconcileRemoteFailureLeavesLocalUntouched(t *testing.T) {
	remote := &fakeRemote{fetchErr: errors.New("network down")}
	adapter := NewAdapter(remote)

	local := localLib()
	got, err := adapter.Reconcile(context.Background(), local, &Identity{UserID: "u1"})
	assert.Error(t, err)
	assert.Equal(t, local, got)
}

func TestReconcileAnonymousIsNoop(t *testing.T) {
	remote := &fakeRemote{}
	adapter := NewAdapter(remote)

	local := localLib()
	got, err := adapter.Reconcile(context.Background(), local, nil)
	require.NoError(t, err)
	assert.Equal(t, local, got)
	assert.Empty(t, remote.replaced)
}

func TestSessionSubscribeAndUnsubscribe(t *testing.T) {
	s := NewSession()

	var got []*Identity
	unsub := s.Subscribe(func(id *Identity) { got = append(got, id) })

	s.SetIdentity(&Identity{UserID: "u1", Email: "a@b.c"})
	s.SetIdentity(nil)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Nil(t, got[1])

	unsub()
	s.SetIdentity(&Identity{UserID: "u2"})
	assert.Len(t, got, 2, "unsubscribed handler must not fire")

	assert.Equal(t, "u2", s.Current().UserID)
}
