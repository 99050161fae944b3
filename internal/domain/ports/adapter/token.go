package adapter

import "gym-membership/internal/domain/model"

// TokenIssuer signs bearer tokens for sessions. Parse returns the session id the
// token was issued for; any signature or expiry failure is domain.ErrAuth.
type TokenIssuer interface {
	Issue(s *model.Session) (string, error)
	Parse(token string) (sessionID string, err error)
}
