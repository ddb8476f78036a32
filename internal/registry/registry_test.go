package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Device{DeviceID: "dev1", SCID: "10111111", Main: true}))

	d, ok := r.Get("10111111")
	require.True(t, ok)
	assert.True(t, d.Main)
}

func TestRegisterDuplicateSCIDFails(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Device{SCID: "10111111"}))
	assert.Error(t, r.Register(Device{SCID: "10111111"}))
}

func TestOnlyOneMainAllowed(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Device{SCID: "10111111", Main: true}))
	assert.Error(t, r.Register(Device{SCID: "10222222", Main: true}))
}

func TestAddSocketSetsNameOnce(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Device{SCID: "10111111"}))
	require.NoError(t, r.AddSocket("10111111", "sock1", "Pixel 7"))
	require.NoError(t, r.AddSocket("10111111", "sock2", "should-not-overwrite"))

	d, _ := r.Get("10111111")
	assert.Equal(t, "Pixel 7", d.Name)
	assert.Equal(t, []string{"sock1", "sock2"}, d.SocketIDs)
}

func TestRemoveSocketDropsDeviceWhenLastSocketGone(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Device{SCID: "10111111"}))
	require.NoError(t, r.AddSocket("10111111", "sock1", ""))

	removed := r.RemoveSocket("10111111", "sock1")
	assert.True(t, removed)

	_, ok := r.Get("10111111")
	assert.False(t, ok)
}

func TestRemoveSocketKeepsDeviceWhileOthersLive(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Device{SCID: "10111111"}))
	require.NoError(t, r.AddSocket("10111111", "sock1", ""))
	require.NoError(t, r.AddSocket("10111111", "sock2", ""))

	removed := r.RemoveSocket("10111111", "sock1")
	assert.False(t, removed)

	d, ok := r.Get("10111111")
	require.True(t, ok)
	assert.Equal(t, []string{"sock2"}, d.SocketIDs)
}

func TestUpdateSizeOnRotation(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Device{SCID: "10111111"}))
	require.NoError(t, r.UpdateSize("10111111", 1080, 1920))

	d, _ := r.Get("10111111")
	assert.Equal(t, uint32(1080), d.Width)
	assert.Equal(t, uint32(1920), d.Height)
}

func TestMainReturnsTheMainDevice(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Device{SCID: "10111111"}))
	require.NoError(t, r.Register(Device{SCID: "10222222", Main: true}))

	d, ok := r.Main()
	require.True(t, ok)
	assert.Equal(t, "10222222", d.SCID)
}
