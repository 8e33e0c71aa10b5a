package tags

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/runnerr0/tagshelf/internal/apperr"
	"github.com/runnerr0/tagshelf/internal/media"
)

// State is the lifecycle position of a Mutation.
type State string

// Mutation states. Committed, Failed, Cancelled, RolledBack and Undone are
// terminal for the apply path; only Committed accepts Undo.
const (
	StatePending    State = "pending_confirmation"
	StateApplying   State = "applying"
	StateCommitting State = "committing"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
	StateRolledBack State = "rolled_back"
	StateUndone     State = "undone"
)

// View is what a presentation layer shows for a mutation: the collection,
// its tag summaries and the preview of the tag in focus.
type View struct {
	Items     []media.Item       `json:"items"`
	Summaries []media.TagSummary `json:"summaries"`
	Preview   media.TagPreview   `json:"preview"`
	// Affected counts the items whose tags the mutation changes.
	Affected int `json:"affected"`
}

// Mutation is one user-initiated tag mutation moving through
// pending → applying → committing → committed|failed.
//
// A Mutation holds the service's in-flight slot from Begin until it reaches
// a terminal state, so at most one mutation is applying or committing per
// Service.
type Mutation struct {
	ID     string
	Intent Intent

	svc *Service

	mu          sync.Mutex
	state       State
	snapshot    []media.Item
	revision    uint64
	next        []media.Item
	view        View
	committedAt time.Time
	err         error
}

// State returns the current state.
func (m *Mutation) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// View returns the latest view: the optimistic one after Apply, the reloaded
// one after a failed commit.
func (m *Mutation) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Err returns the error that moved the mutation to Failed, if any.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// CommittedAt returns when the mutation was committed.
func (m *Mutation) CommittedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committedAt
}

// Describe returns the confirmation summary, e.g. "Rename jazz → smooth-jazz".
func (m *Mutation) Describe() string {
	return m.Intent.Describe()
}

// Impact describes what confirming will do to count items.
func (m *Mutation) Impact(count int) string {
	switch in := m.Intent.(type) {
	case RenameRequest:
		return fmt.Sprintf("%d media items will reference %q.", count, in.NextName)
	case MergeRequest:
		return fmt.Sprintf("%d media items will move to %q.", count, in.Target)
	case DeleteRequest:
		if in.Replacement != "" {
			return fmt.Sprintf("%d media items will adopt %q.", count, in.Replacement)
		}
		return fmt.Sprintf("%d media items will lose this tag.", count)
	}
	return ""
}

// Outcome is the message shown after a successful commit.
func (m *Mutation) Outcome() string {
	switch in := m.Intent.(type) {
	case RenameRequest:
		return "Renamed to " + in.NextName
	case MergeRequest:
		return "Merged into " + in.Target
	case DeleteRequest:
		if in.Replacement != "" {
			return fmt.Sprintf("Replaced %s with %s", in.Tag, in.Replacement)
		}
		return "Deleted " + in.Tag
	}
	return ""
}

// Destination is the tag to show after the commit, "" for the tag list.
func (m *Mutation) Destination() string {
	if m.Intent.Kind() == KindDelete {
		return ""
	}
	return m.Intent.focus()
}

// Cancel abandons a mutation that was never confirmed.
func (m *Mutation) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePending {
		return apperr.Conflict(fmt.Sprintf("cannot cancel a mutation in state %s", m.state))
	}
	m.state = StateCancelled
	m.svc.release(m)
	return nil
}

// Apply snapshots the collection and computes the optimistic view. Nothing
// is written.
func (m *Mutation) Apply(ctx context.Context) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePending {
		return View{}, apperr.Conflict(fmt.Sprintf("cannot apply a mutation in state %s", m.state))
	}

	items, revision, err := m.svc.store.Snapshot(ctx)
	if err != nil {
		m.fail(err)
		return View{}, err
	}

	m.snapshot = media.CloneItems(items)
	m.revision = revision
	m.next = m.Intent.Apply(items)
	m.view = m.svc.viewOf(m.next, m.Intent.focus())
	m.view.Affected = Changed(m.snapshot, m.next)
	m.state = StateApplying
	return m.view, nil
}

// Commit persists the applied collection. On failure the pre-mutation
// snapshot is written back, caches are dropped and the view is reloaded from
// the store; the mutation ends Failed and the error is returned.
func (m *Mutation) Commit(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateApplying {
		return apperr.Conflict(fmt.Sprintf("cannot commit a mutation in state %s", m.state))
	}
	m.state = StateCommitting

	store := m.svc.store
	if err := store.SaveItemsIfRevision(ctx, m.next, m.revision); err != nil {
		// A conflict means someone else's write is in the store; keep it.
		if !errors.Is(err, apperr.ErrConflict) {
			if rerr := store.SaveItems(ctx, m.snapshot); rerr != nil {
				m.svc.logger.Error("failed to restore snapshot after failed commit",
					"mutation_id", m.ID, "error", rerr)
			}
		}
		store.InvalidateCache()
		m.view = m.svc.reload(ctx, m.Intent.origin())
		m.fail(err)
		return err
	}

	m.committedAt = m.svc.now()
	m.state = StateCommitted
	m.svc.committed(ctx, m)
	return nil
}

// Rollback discards an applied view that was not committed. The store was
// never written, so only the in-flight slot is released.
func (m *Mutation) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateApplying {
		return apperr.Conflict(fmt.Sprintf("cannot roll back a mutation in state %s", m.state))
	}
	m.state = StateRolledBack
	m.view = m.svc.viewOf(m.snapshot, m.Intent.origin())
	m.svc.release(m)
	return nil
}

// Undo re-saves the pre-mutation snapshot as a fresh commit, provided the
// undo window has not elapsed and nothing else was written since. It
// returns the tag to navigate back to.
func (m *Mutation) Undo(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateCommitted {
		return "", apperr.Conflict(fmt.Sprintf("cannot undo a mutation in state %s", m.state))
	}
	if m.svc.now().Sub(m.committedAt) > m.svc.cfg.UndoWindow {
		return "", apperr.ErrUndoExpired
	}
	if err := m.svc.acquire(m); err != nil {
		return "", err
	}
	defer m.svc.release(m)

	store := m.svc.store
	if err := store.SaveItemsIfRevision(ctx, m.snapshot, m.revision+1); err != nil {
		store.InvalidateCache()
		return "", err
	}

	m.state = StateUndone
	m.view = m.svc.viewOf(m.snapshot, m.Intent.origin())
	m.svc.logger.Info("tag mutation undone",
		"mutation_id", m.ID, "action", string(m.Intent.Kind()), "tag", m.Intent.origin())
	m.svc.store.Audit(ctx, "undo", m.Describe())
	return m.Intent.origin(), nil
}

func (m *Mutation) fail(err error) {
	m.state = StateFailed
	m.err = err
	m.svc.release(m)
}
