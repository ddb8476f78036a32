package adbexec

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDevicesOutput(t *testing.T) {
	out := "List of devices attached\n192.168.66.102:5555\tdevice\nemulator-5554\toffline\n\n"
	devices := parseDevicesOutput(out)
	require.Len(t, devices, 2)
	assert.Equal(t, ADBListedDevice{Serial: "192.168.66.102:5555", State: "device"}, devices[0])
	assert.Equal(t, ADBListedDevice{Serial: "emulator-5554", State: "offline"}, devices[1])
}

func TestParseDevicesOutputEmpty(t *testing.T) {
	devices := parseDevicesOutput("List of devices attached\n")
	assert.Empty(t, devices)
}

func TestGenerateSCIDShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		scid, err := GenerateSCID()
		require.NoError(t, err)
		require.Len(t, scid, 8)
		assert.True(t, strings.HasPrefix(scid, "10"))

		n, err := strconv.ParseInt(scid, 10, 64)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, int64(1<<31-1))

		for _, c := range scid[2:] {
			assert.True(t, c >= '1' && c <= '9', "digit %q out of 1-9 range", c)
		}
	}
}

func TestBuildArgsIncludesServerAndSerial(t *testing.T) {
	d := NewDevice(Options{Serial: "abc123", ServerHost: "127.0.0.1", ServerPort: 5038})
	args := d.buildArgs(true, "devices")
	assert.Equal(t, []string{"-H", "127.0.0.1", "-P", "5038", "-s", "abc123", "devices"}, args)
}

func TestBuildArgsOmitsSerialWhenNotRequested(t *testing.T) {
	d := NewDevice(Options{Serial: "abc123"})
	args := d.buildArgs(false, "devices")
	assert.Equal(t, []string{"devices"}, args)
}
