// Package reconcile decides, on entry to any protected screen, whether the
// signed-in user has an open punch and therefore which screen to show.
//
// The local cache is trusted first. Only when it holds no pending punch for
// the current user is the backend asked. Any failure along the way is
// logged and resolves to "closed", so the user can always reach punch-in.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/punchctl/internal/punch"
	"github.com/roach88/punchctl/internal/route"
	"github.com/roach88/punchctl/internal/session"
)

// Source says where an open punch was found.
type Source string

const (
	SourceNone   Source = "none"
	SourceCache  Source = "cache"
	SourceServer Source = "server"
)

// RoleAdmin is the identity role that lands on the admin screen.
const RoleAdmin = "admin"

// State is the outcome of reconciliation.
type State struct {
	Open   bool
	Punch  punch.Record
	Source Source
}

// Route maps the state to its screen.
func (s State) Route() route.Route {
	if s.Open {
		return route.PunchOut
	}
	return route.PunchIn
}

// Session is the part of the session store reconciliation reads and writes.
type Session interface {
	HasCredential(ctx context.Context) (bool, error)
	User(ctx context.Context) (session.Identity, bool, error)
	ReadCachedPunch(ctx context.Context) (punch.Record, bool, error)
	CachePunch(ctx context.Context, rec punch.Record) error
	ClearCachedPunch(ctx context.Context) error
}

// PendingSource lists the backend's pending punches.
type PendingSource interface {
	Pending(ctx context.Context) ([]punch.Record, error)
}

// Reconciler resolves punch state for the current session.
type Reconciler struct {
	sess    Session
	pending PendingSource
	log     *zap.Logger
}

// New creates a Reconciler. log may be nil.
func New(sess Session, pending PendingSource, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{sess: sess, pending: pending, log: log}
}

// Resolve determines whether the current user has an open punch. It makes
// at most one backend request and never fails. Without a stored identity
// nothing can be matched, so the answer is closed.
func (r *Reconciler) Resolve(ctx context.Context) State {
	user, ok, err := r.sess.User(ctx)
	if err != nil {
		r.log.Warn("read signed-in user", zap.Error(err))
	}
	if err != nil || !ok || user.ID == "" {
		r.log.Warn("no signed-in user identity, assuming no active punch")
		return State{Source: SourceNone}
	}

	cached, ok, err := r.sess.ReadCachedPunch(ctx)
	switch {
	case err != nil:
		r.log.Warn("read cached punch", zap.Error(err))
	case ok && cached.IsPending() && ownedBy(cached, user.ID):
		return State{Open: true, Punch: cached, Source: SourceCache}
	case ok && !ownedBy(cached, user.ID):
		r.log.Info("dropping cached punch of another user",
			zap.String("punch_id", cached.ID), zap.String("owner", cached.Username))
		if err := r.sess.ClearCachedPunch(ctx); err != nil {
			r.log.Warn("clear foreign cached punch", zap.Error(err))
		}
	}

	records, err := r.pending.Pending(ctx)
	if err != nil {
		r.log.Warn("checking punch status failed, assuming no active punch", zap.Error(err))
		return State{Source: SourceNone}
	}

	matches := punch.FilterPending(records, user.ID)
	if len(matches) == 0 {
		return State{Source: SourceNone}
	}
	if len(matches) > 1 {
		r.log.Warn("several pending punches for one user, using the first",
			zap.String("user", user.ID), zap.Int("count", len(matches)))
	}

	open := matches[0]
	if err := r.sess.CachePunch(ctx, open); err != nil {
		r.log.Warn("cache pending punch", zap.Error(err))
	}
	return State{Open: true, Punch: open, Source: SourceServer}
}

// ownedBy accepts records that name no user, which is how some backends
// answer a punch-in.
func ownedBy(rec punch.Record, userID string) bool {
	return rec.Username == "" || rec.Username == userID
}

// Guard decides the screen for a request to want. Without a credential the
// answer is always route.Login, decided before anything else is read.
// Admin screens only need a credential; every other request goes where the
// punch state says. An empty want means "wherever the user belongs", which
// is also the post-login landing decision.
func (r *Reconciler) Guard(ctx context.Context, want route.Route) (route.Route, State) {
	has, err := r.sess.HasCredential(ctx)
	if err != nil {
		r.log.Warn("read credential", zap.Error(err))
	}
	if err != nil || !has {
		return route.Login, State{Source: SourceNone}
	}

	if want == route.Admin {
		return route.Admin, State{Source: SourceNone}
	}
	if want == "" {
		if user, ok, _ := r.sess.User(ctx); ok && user.Role == RoleAdmin {
			return route.Admin, State{Source: SourceNone}
		}
	}

	state := r.Resolve(ctx)
	return state.Route(), state
}
