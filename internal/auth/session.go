package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"telemetry-hub/internal/db"
)

type sessionStore interface {
	GetSession(ctx context.Context, sessionID string) (db.Session, error)
}

type userStore interface {
	GetUser(ctx context.Context, id string) (db.User, error)
}

// sessionData is the part of a stored session the handshake needs.
type sessionData struct {
	Passport struct {
		User json.RawMessage `json:"user"`
	} `json:"passport"`
}

// userID accepts both string and numeric user ids.
func (s sessionData) userID() string {
	raw := strings.TrimSpace(string(s.Passport.User))
	if raw == "" || raw == "null" {
		return ""
	}
	var id string
	if err := json.Unmarshal(s.Passport.User, &id); err == nil {
		return id
	}
	return raw
}

type SessionConfig struct {
	Sessions sessionStore
	Users    userStore
	Now      func() time.Time
}

// SessionResolver looks sessions up in the relational session table.
type SessionResolver struct {
	sessions sessionStore
	users    userStore
	now      func() time.Time
}

func NewSessionResolver(cfg SessionConfig) *SessionResolver {
	r := &SessionResolver{
		sessions: cfg.Sessions,
		users:    cfg.Users,
		now:      cfg.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *SessionResolver) Resolve(ctx context.Context, sid string) (Identity, error) {
	const fn = "SessionResolver:Resolve"

	session, err := r.sessions.GetSession(ctx, sid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Identity{}, fmt.Errorf("%s:%w: unknown session", fn, ErrUnauthorized)
		}
		return Identity{}, fmt.Errorf("%s:%w:%w", fn, ErrResolve, err)
	}
	if session.Expires > 0 && session.Expires < r.now().Unix() {
		return Identity{}, fmt.Errorf("%s:%w", fn, ErrSessionExpired)
	}
	return identityFromSession(ctx, fn, r.users, []byte(session.Data))
}

func identityFromSession(ctx context.Context, fn string, users userStore, data []byte) (Identity, error) {
	var sd sessionData
	if err := json.Unmarshal(data, &sd); err != nil {
		return Identity{}, fmt.Errorf("%s:%w:%w", fn, ErrUnauthorized, err)
	}
	userID := sd.userID()
	if userID == "" {
		return Identity{}, fmt.Errorf("%s:%w: session has no user", fn, ErrUnauthorized)
	}

	user, err := users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Identity{}, fmt.Errorf("%s:%w: unknown user %s", fn, ErrUnauthorized, userID)
		}
		return Identity{}, fmt.Errorf("%s:%w:%w", fn, ErrResolve, err)
	}
	return Identity{UserID: user.ID, Role: user.Role}, nil
}
