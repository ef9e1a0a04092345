package usecase

import "github.com/rocketscienceinc/pentago-client/internal/apperror"

// lease is the exclusive right to have one request in flight for the session.
// Each Acquire hands out a fresh token; Release with any other token is a no-op,
// so a completion that arrives after Revoke cannot free someone else's lease.
type lease struct {
	token  uint64
	holder apperror.Kind
	held   bool
}

func (that *lease) Acquire(kind apperror.Kind) (uint64, bool) {
	if that.held {
		return 0, false
	}

	that.token++
	that.held = true
	that.holder = kind

	return that.token, true
}

func (that *lease) Release(token uint64) bool {
	if !that.held || token != that.token {
		return false
	}

	that.held = false
	that.holder = ""

	return true
}

// Revoke drops the current holder without its token.
func (that *lease) Revoke() {
	that.held = false
	that.holder = ""
}

func (that *lease) Busy() bool {
	return that.held
}

func (that *lease) HeldBy(kind apperror.Kind) bool {
	return that.held && that.holder == kind
}
