package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roach88/punchctl/internal/punch"
)

const (
	keyToken     = "token"
	keyUser      = "user"
	keyPunch     = "punch"
	keyAdminName = "admin_name"
)

// Identity is the signed-in user as the login response describes it.
type Identity struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	ClientID string `json:"client_id,omitempty"`
}

// SetCredential stores the bearer token. An empty token clears it.
func (s *Store) SetCredential(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearCredential(ctx)
	}
	return s.put(ctx, keyToken, token)
}

// ClearCredential removes the bearer token.
func (s *Store) ClearCredential(ctx context.Context) error {
	return s.del(ctx, keyToken)
}

// Credential returns the stored token, or "" when there is none or it is
// an expired JWT.
func (s *Store) Credential(ctx context.Context) (string, error) {
	token, ok, err := s.get(ctx, keyToken)
	if err != nil || !ok {
		return "", err
	}
	if s.expired(token) {
		return "", nil
	}
	return token, nil
}

// HasCredential is the authentication gate.
func (s *Store) HasCredential(ctx context.Context) (bool, error) {
	token, err := s.Credential(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// expired reports whether token parses as a JWT whose exp has passed.
// Opaque tokens never expire client-side.
func (s *Store) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

// SetUser records who is signed in.
func (s *Store) SetUser(ctx context.Context, id Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return s.put(ctx, keyUser, string(b))
}

// User returns the signed-in identity. A missing or unreadable entry is
// reported as absent.
func (s *Store) User(ctx context.Context) (Identity, bool, error) {
	raw, ok, err := s.get(ctx, keyUser)
	if err != nil || !ok {
		return Identity{}, false, err
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || id.ID == "" {
		return Identity{}, false, nil
	}
	return id, true, nil
}

// CachePunch remembers the active punch.
func (s *Store) CachePunch(ctx context.Context, rec punch.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache punch: %w", err)
	}
	return s.put(ctx, keyPunch, string(b))
}

// ClearCachedPunch forgets the active punch.
func (s *Store) ClearCachedPunch(ctx context.Context) error {
	return s.del(ctx, keyPunch)
}

// ReadCachedPunch returns the cached punch. Malformed JSON is reported as
// absent, not as an error.
func (s *Store) ReadCachedPunch(ctx context.Context) (punch.Record, bool, error) {
	raw, ok, err := s.get(ctx, keyPunch)
	if err != nil || !ok {
		return punch.Record{}, false, err
	}
	var rec punch.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return punch.Record{}, false, nil
	}
	return rec, true, nil
}

// SetAdminName stores the display name shown on admin screens.
func (s *Store) SetAdminName(ctx context.Context, name string) error {
	return s.put(ctx, keyAdminName, name)
}

// AdminName returns the admin display name, or "".
func (s *Store) AdminName(ctx context.Context) (string, error) {
	name, _, err := s.get(ctx, keyAdminName)
	return name, err
}

// Clear wipes the whole session. Used on logout.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_kv`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
