package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIDs(t *testing.T) {
	g := NewSequenceIDs("build")
	assert.Equal(t, "build-0001", g.Generate())
	assert.Equal(t, "build-0002", g.Generate())

	assert.Equal(t, "id-0001", NewSequenceIDs("").Generate())
}

func TestSequenceIDs_Concurrent(t *testing.T) {
	g := NewSequenceIDs("x")
	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(g.Generate(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}

func TestStepClock(t *testing.T) {
	c := NewStepClock(time.Second)
	assert.Equal(t, Epoch, c.Now())
	assert.Equal(t, Epoch.Add(time.Second), c.Now())

	c.Reset()
	assert.Equal(t, Epoch, c.Now())
}
