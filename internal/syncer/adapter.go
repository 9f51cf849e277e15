package syncer

import (
	"context"
	"fmt"
	"log"

	"leafnote/pkg/models"
)

// Remote is the hosted copy of a user's shelves, however it is reached.
type Remote interface {
	FetchLibrary(ctx context.Context) (models.Library, error)
	ReplaceLibrary(ctx context.Context, lib models.Library) error
}

// Adapter reconciles local state against the remote copy on sign-in.
type Adapter struct {
	Remote Remote
}

func NewAdapter(remote Remote) *Adapter {
	return &Adapter{Remote: remote}
}

// Reconcile applies the remote-wins rule for a fresh sign-in:
//
//   - remote has rows: they replace local state entirely. Local
//     (possibly another person's anonymous lists on a shared device)
//     is deliberately discarded, never merged.
//   - remote is empty: it is seeded from local, and local is kept.
//
// A remote fetch failure returns the local library unchanged along
// with the error, so callers never half-apply a sync. A seeding
// failure is logged only; local stays authoritative either way.
func (a *Adapter) Reconcile(ctx context.Context, local models.Library, identity *Identity) (models.Library, error) {
	if identity == nil {
		return local, nil
	}

	remote, err := a.Remote.FetchLibrary(ctx)
	if err != nil {
		return local, fmt.Errorf("fetch remote books: %w", err)
	}

	if len(remote.ReadBooks) > 0 || len(remote.ToReadBooks) > 0 {
		return remote, nil
	}

	if len(local.ReadBooks) == 0 && len(local.ToReadBooks) == 0 {
		return local, nil
	}
	if err := a.Remote.ReplaceLibrary(ctx, local); err != nil {
		log.Printf("[syncer] seed remote for %s failed: %v", identity.UserID, err)
	}
	return local, nil
}
