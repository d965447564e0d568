package token

import "sync"

// Tiered routes the token pair to a volatile or durable tier based on the
// persistence class picked at login, and remembers that class so refresh
// writes land in the same tier. It is the Store handed to the HTTP client:
// the one piece of shared mutable state in the SDK.
type Tiered struct {
	mu      sync.RWMutex
	session Store
	durable Store
	class   PersistenceClass
}

// NewTiered builds a tiered store from a volatile and a durable tier.
// The active class starts as whichever tier already holds a refresh token,
// preferring the durable one, so restarts resume a remembered login.
func NewTiered(session, durable Store) *Tiered {
	t := &Tiered{session: session, durable: durable, class: Session}
	if durable != nil && durable.RefreshToken() != "" {
		t.class = Permanent
	}
	return t
}

// active returns the tier for the current class.
func (t *Tiered) active() Store {
	if t.class == Permanent && t.durable != nil {
		return t.durable
	}
	return t.session
}

func (t *Tiered) AccessToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active().AccessToken()
}

func (t *Tiered) RefreshToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active().RefreshToken()
}

// SetTokens stores the pair in the tier selected by class and clears the
// other tier, so a class switch at login never leaves stale credentials
// behind.
func (t *Tiered) SetTokens(access, refresh string, class PersistenceClass) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if class == Permanent && t.durable == nil {
		class = Session
	}
	t.class = class

	if class == Permanent {
		if err := t.session.Clear(); err != nil {
			return err
		}
		return t.durable.SetTokens(access, refresh, class)
	}

	if t.durable != nil {
		if err := t.durable.Clear(); err != nil {
			return err
		}
	}
	return t.session.SetTokens(access, refresh, class)
}

// UpdateTokens replaces the pair in the currently active tier. Used by the
// refresh path, which must not change the class chosen at login.
func (t *Tiered) UpdateTokens(access, refresh string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active().UpdateTokens(access, refresh)
}

// Clear wipes both tiers.
func (t *Tiered) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.session.Clear(); err != nil {
		return err
	}
	if t.durable != nil {
		return t.durable.Clear()
	}
	return nil
}

// Class reports the persistence class of the current pair.
func (t *Tiered) Class() PersistenceClass {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.class
}
