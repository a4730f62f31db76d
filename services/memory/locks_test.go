package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameSession(t *testing.T) {
	locks := NewSessionLocks()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Lock("session-1")
			defer release()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestLockDistinctSessionsDoNotContend(t *testing.T) {
	locks := NewSessionLocks()

	releaseA := locks.Lock("session-a")
	defer releaseA()

	// Would deadlock if sessions shared a lock.
	releaseB := locks.Lock("session-b")
	releaseB()
}

func TestLockReentersAfterRelease(t *testing.T) {
	locks := NewSessionLocks()

	release := locks.Lock("session-1")
	release()

	release = locks.Lock("session-1")
	release()
}

func TestLockMapReclaimedWhenIdle(t *testing.T) {
	locks := NewSessionLocks()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Lock("session-1")
			release()
		}()
	}
	wg.Wait()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
