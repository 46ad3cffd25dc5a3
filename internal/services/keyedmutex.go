package services

import "sync"

// keyedMutex provides one mutex per string key. The envelope service uses it
// to serialize routing recomputation per envelope: two recipients of the same
// envelope completing at once are processed one after the other, while
// unrelated envelopes proceed in parallel.
//
// Entries are reference-counted and removed when the last holder unlocks, so
// the map stays proportional to the number of envelopes currently in flight.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns the matching unlock function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
