package inbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msn-network/msn-go/pkg/event"
	"github.com/msn-network/msn-go/pkg/mac"
)

const (
	bitMgmt event.Set = 1 << iota
	bitData
)

func newAdapter(depth int) *Adapter {
	return New(event.NewFlags(), Config{ManagementBit: bitMgmt, DataBit: bitData, Depth: depth})
}

func TestDeliverRaisesBits(t *testing.T) {
	a := newAdapter(0)

	require.NoError(t, a.DeliverManagement(&mac.StartConfirm{}))
	assert.Equal(t, bitMgmt, a.Flags().Take())

	require.NoError(t, a.DeliverData(&mac.DataConfirm{}))
	assert.Equal(t, bitData, a.Flags().Take())
}

func TestPopFIFOAndReRaise(t *testing.T) {
	a := newAdapter(0)
	first := &mac.DataConfirm{Handle: 1}
	second := &mac.DataConfirm{Handle: 2}
	require.NoError(t, a.DeliverData(first))
	require.NoError(t, a.DeliverData(second))
	a.Flags().Take()

	got := a.PopData()
	assert.Same(t, first, got)
	assert.Equal(t, bitData, a.Flags().Take(), "bit must be re-raised while queue is non-empty")

	got = a.PopData()
	assert.Same(t, second, got)
	assert.Equal(t, event.Set(0), a.Flags().Take(), "empty queue must not re-raise")

	assert.Nil(t, a.PopData())
	assert.Nil(t, a.PopManagement())
}

func TestDepthLimit(t *testing.T) {
	a := newAdapter(1)
	require.NoError(t, a.DeliverManagement(&mac.StartConfirm{}))
	assert.ErrorIs(t, a.DeliverManagement(&mac.StartConfirm{}), mac.ErrQueueFull)
	assert.Equal(t, 1, a.PendingManagement())

	require.NoError(t, a.DeliverData(&mac.DataConfirm{}))
	assert.ErrorIs(t, a.DeliverData(&mac.DataConfirm{}), mac.ErrQueueFull)
	assert.Equal(t, 1, a.PendingData())
}

func TestDeliverNil(t *testing.T) {
	a := newAdapter(0)
	assert.ErrorIs(t, a.DeliverManagement(nil), mac.ErrInvalidParameter)
	assert.ErrorIs(t, a.DeliverData(nil), mac.ErrInvalidParameter)
}

func TestDrainReleases(t *testing.T) {
	a := newAdapter(0)
	released := 0
	free := func() { released++ }
	require.NoError(t, a.DeliverManagement(&mac.StartConfirm{Buffer: mac.NewBuffer(free)}))
	require.NoError(t, a.DeliverData(&mac.DataConfirm{Buffer: mac.NewBuffer(free)}))

	assert.Equal(t, 2, a.Drain())
	assert.Equal(t, 2, released)
	assert.Equal(t, 0, a.PendingManagement()+a.PendingData())
}

func TestDepthCallback(t *testing.T) {
	a := newAdapter(0)
	var lastMgmt, lastData int
	a.OnDepthChange(func(m, d int) { lastMgmt, lastData = m, d })

	require.NoError(t, a.DeliverManagement(&mac.StartConfirm{}))
	require.NoError(t, a.DeliverData(&mac.DataConfirm{}))
	assert.Equal(t, 1, lastMgmt)
	assert.Equal(t, 1, lastData)

	a.PopManagement()
	assert.Equal(t, 0, lastMgmt)
}

func TestConcurrentProducers(t *testing.T) {
	a := newAdapter(0)
	const producers, each = 8, 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				_ = a.DeliverData(&mac.DataConfirm{})
				_ = a.DeliverManagement(&mac.StartConfirm{})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*each, a.PendingData())
	assert.Equal(t, producers*each, a.PendingManagement())
}
