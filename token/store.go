// Package token stores the SkillSwap credential pair (access + refresh token)
// and answers expiry questions about it. It is a pure storage facade: no
// network calls and no refresh logic live here.
package token

// PersistenceClass selects which storage tier a token pair is written to.
// It is chosen by the caller at login time ("remember me") and stays fixed
// for the lifetime of the pair.
type PersistenceClass int

const (
	// Session keeps the pair in volatile memory only.
	Session PersistenceClass = iota
	// Permanent writes the pair to the durable tier (file or redis).
	Permanent
)

func (c PersistenceClass) String() string {
	switch c {
	case Session:
		return "session"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Store is the credential storage contract shared by all tiers.
//
// An empty string from AccessToken/RefreshToken means "no token". SetTokens
// overwrites both fields so callers never observe a partial write.
// UpdateTokens replaces the pair while keeping the persistence class chosen
// at login; it is the write path used after a refresh. Clear is idempotent.
type Store interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string, class PersistenceClass) error
	UpdateTokens(access, refresh string) error
	Clear() error
}
