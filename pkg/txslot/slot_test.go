package txslot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/mac/mocks"
	"github.com/msn-network/msn-go/pkg/secure"
)

func TestSubmitDispatchConfirm(t *testing.T) {
	svc := mocks.NewMockService(t)
	var sent mac.DataRequest
	svc.EXPECT().Data(mock.Anything).Run(func(req mac.DataRequest) { sent = req }).Return(nil).Once()

	m := New(svc, nil, 0)
	require.NoError(t, m.Submit(0x0002, []byte("hi")))
	assert.True(t, m.Busy())
	assert.False(t, m.InFlight())

	req, err := m.Dispatch(0x0001, 0xC0C0)
	require.NoError(t, err)
	assert.True(t, m.InFlight())

	assert.Equal(t, mac.AddrModeShort, sent.SrcAddrMode)
	assert.Equal(t, mac.ShortAddress(0x0001), sent.SrcAddr)
	assert.Equal(t, mac.ShortAddress(0x0002), sent.DstAddr)
	assert.Equal(t, mac.PanID(0xC0C0), sent.DstPanID)
	assert.Equal(t, mac.TxAck, sent.TxOptions)
	assert.Equal(t, []byte("hi"), sent.Msdu)
	assert.Equal(t, req.Handle, sent.Handle)

	released, ok := m.OnConfirm(&mac.DataConfirm{Handle: req.Handle, Status: mac.StatusSuccess})
	require.True(t, ok)
	assert.Equal(t, []byte("hi"), released.Payload)
	assert.False(t, m.Busy())
}

func TestSecondSubmitIsBusy(t *testing.T) {
	m := New(mocks.NewMockService(t), nil, 0)
	require.NoError(t, m.Submit(0x0002, []byte("one")))

	err := m.Submit(0x0004, []byte("two"))
	assert.ErrorIs(t, err, ErrBusy)

	req, ok := m.Abandon()
	require.True(t, ok)
	assert.Equal(t, mac.ShortAddress(0x0002), req.Dest, "busy submit must not replace the request")
}

func TestConfirmReleasesRegardlessOfStatus(t *testing.T) {
	for _, status := range []mac.Status{mac.StatusSuccess, mac.StatusNoAck, mac.StatusChannelAccessFailure} {
		t.Run(status.String(), func(t *testing.T) {
			svc := mocks.NewMockService(t)
			svc.EXPECT().Data(mock.Anything).Return(nil).Twice()

			m := New(svc, nil, 0)
			require.NoError(t, m.Submit(0x0002, []byte("x")))
			req, err := m.Dispatch(0x0001, 0xC0C0)
			require.NoError(t, err)

			_, ok := m.OnConfirm(&mac.DataConfirm{Handle: req.Handle, Status: status})
			require.True(t, ok)

			require.NoError(t, m.Submit(0x0002, []byte("y")), "slot must be free after confirm")
			_, err = m.Dispatch(0x0001, 0xC0C0)
			require.NoError(t, err)
		})
	}
}

func TestConfirmWithOtherHandleIgnored(t *testing.T) {
	svc := mocks.NewMockService(t)
	svc.EXPECT().Data(mock.Anything).Return(nil).Once()

	m := New(svc, nil, 0)
	require.NoError(t, m.Submit(0x0002, []byte("x")))
	req, err := m.Dispatch(0x0001, 0xC0C0)
	require.NoError(t, err)

	_, ok := m.OnConfirm(&mac.DataConfirm{Handle: req.Handle + 1})
	assert.False(t, ok)
	assert.True(t, m.Busy())
}

func TestConfirmBeforeDispatchIgnored(t *testing.T) {
	m := New(mocks.NewMockService(t), nil, 0)
	require.NoError(t, m.Submit(0x0002, []byte("x")))
	_, ok := m.OnConfirm(&mac.DataConfirm{Handle: 0})
	assert.False(t, ok)
}

func TestHandleIncrements(t *testing.T) {
	svc := mocks.NewMockService(t)
	svc.EXPECT().Data(mock.Anything).Return(nil).Times(3)

	m := New(svc, nil, 0)
	var handles []uint8
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Submit(0x0002, []byte("x")))
		req, err := m.Dispatch(0x0001, 0xC0C0)
		require.NoError(t, err)
		handles = append(handles, req.Handle)
		m.OnConfirm(&mac.DataConfirm{Handle: req.Handle})
	}
	assert.Equal(t, []uint8{0, 1, 2}, handles)
}

func TestDispatchRejectedReleasesSlot(t *testing.T) {
	svc := mocks.NewMockService(t)
	svc.EXPECT().Data(mock.Anything).Return(mac.ErrNoBuffer).Once()

	m := New(svc, nil, 0)
	require.NoError(t, m.Submit(0x0002, []byte("x")))
	_, err := m.Dispatch(0x0001, 0xC0C0)
	assert.True(t, errors.Is(err, mac.ErrNoBuffer))
	assert.False(t, m.Busy())
}

func TestDispatchStates(t *testing.T) {
	svc := mocks.NewMockService(t)
	svc.EXPECT().Data(mock.Anything).Return(nil).Once()

	m := New(svc, nil, 0)
	_, err := m.Dispatch(0x0001, 0xC0C0)
	assert.ErrorIs(t, err, ErrNoRequest)

	require.NoError(t, m.Submit(0x0002, []byte("x")))
	_, err = m.Dispatch(0x0001, 0xC0C0)
	require.NoError(t, err)
	_, err = m.Dispatch(0x0001, 0xC0C0)
	assert.ErrorIs(t, err, ErrInFlight)
}

func TestSubmitValidation(t *testing.T) {
	m := New(mocks.NewMockService(t), nil, 0)
	assert.ErrorIs(t, m.Submit(0x0002, nil), ErrInvalidParameter)
	assert.ErrorIs(t, m.Submit(0x0002, make([]byte, mac.MaxMACPayloadSize+1)), ErrInvalidParameter)
	assert.ErrorIs(t, m.Submit(mac.NoShortAddress, []byte("x")), ErrInvalidParameter)
	assert.NoError(t, m.Submit(0x0002, make([]byte, mac.MaxMACPayloadSize)))
}

func TestDispatchSealsPayload(t *testing.T) {
	key := make([]byte, secure.KeySize)
	framer, err := secure.NewAESFramer(key, 0xC0C0, 0)
	require.NoError(t, err)

	svc := mocks.NewMockService(t)
	var sent mac.DataRequest
	svc.EXPECT().Data(mock.Anything).Run(func(req mac.DataRequest) { sent = req }).Return(nil).Once()

	m := New(svc, framer, 0)
	assert.Equal(t, mac.MaxMACPayloadSize-framer.Overhead(), m.MaxPayload())
	require.NoError(t, m.Submit(0x0002, []byte("secret")))
	_, err = m.Dispatch(0x0001, 0xC0C0)
	require.NoError(t, err)

	opened, err := framer.Open(sent.Msdu)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), opened)
}
