package train

import (
	"sync"

	"golang.org/x/xerrors"
)

// The numeric backend cannot interleave two independent training
// mutations, so one session gates the whole process, not one network.
var sessionMu sync.Mutex
var sessionBusy bool

// acquireSession claims the process-wide session slot. A second claim
// fails immediately with ErrSessionConflict, it never queues. The
// returned release must be deferred so every exit path, normal,
// cancelled or faulted, clears the slot.
func acquireSession() (release func(), err error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if sessionBusy {
		return nil, xerrors.Errorf("cannot start: %w", ErrSessionConflict)
	}
	sessionBusy = true
	return func() {
		sessionMu.Lock()
		sessionBusy = false
		sessionMu.Unlock()
	}, nil
}
