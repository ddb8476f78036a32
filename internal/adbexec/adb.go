// Package adbexec wraps the minimal subset of ADB interactions required to
// bootstrap a scrcpy companion session: pushing the server JAR, reversing a
// port, launching the companion through `adb shell`, and listing visible
// devices. It is the sole collaborator that shells out to an external
// binary; everything else in this module talks wire protocol over sockets.
package adbexec

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ServerJARRemotePath is where the companion JAR is pushed on-device.
const ServerJARRemotePath = "/data/local/tmp/scrcpy-server.jar"

// Options configure how adb is invoked for a single device.
type Options struct {
	Path       string // path to the adb executable; "adb" if empty
	Serial     string
	ServerHost string
	ServerPort int
}

// Device is a configured handle onto one ADB-visible device.
type Device struct {
	opts Options
}

func NewDevice(opts Options) *Device {
	if opts.Path == "" {
		opts.Path = "adb"
	}
	return &Device{opts: opts}
}

func (d *Device) bin() string {
	return d.opts.Path
}

func (d *Device) buildArgs(includeSerial bool, extra ...string) []string {
	args := make([]string, 0, 4+len(extra))
	if d.opts.ServerHost != "" {
		args = append(args, "-H", d.opts.ServerHost)
	}
	if d.opts.ServerPort != 0 {
		args = append(args, "-P", strconv.Itoa(d.opts.ServerPort))
	}
	if includeSerial && d.opts.Serial != "" {
		args = append(args, "-s", d.opts.Serial)
	}
	return append(args, extra...)
}

func (d *Device) run(args ...string) ([]byte, error) {
	cmd := exec.Command(d.bin(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("adbexec: %s %s: %w (%s)", d.bin(), strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// PushServer uploads the companion JAR onto the device.
func (d *Device) PushServer(localPath string) error {
	_, err := d.run(d.buildArgs(true, "push", localPath, ServerJARRemotePath)...)
	if err != nil {
		return fmt.Errorf("push server: %w", err)
	}
	log.Debug().Str("component", "adbexec").Str("serial", d.opts.Serial).Msg("pushed companion jar")
	return nil
}

// Reverse asks the device to connect localabstract:name back to the given
// local TCP port.
func (d *Device) Reverse(name string, localPort int) error {
	remote := "localabstract:" + name
	local := fmt.Sprintf("tcp:%d", localPort)
	_, err := d.run(d.buildArgs(true, "reverse", remote, local)...)
	if err != nil {
		return fmt.Errorf("reverse: %w", err)
	}
	return nil
}

// RemoveReverse tears down a previously-established reverse tunnel.
func (d *Device) RemoveReverse(name string) error {
	_, err := d.run(d.buildArgs(true, "reverse", "--remove", "localabstract:"+name)...)
	if err != nil {
		return fmt.Errorf("remove reverse: %w", err)
	}
	return nil
}

// Connect runs `adb connect address`, used for wireless debugging before a
// device has a USB-attached serial to target.
func (d *Device) Connect(address string) ([]byte, error) {
	return d.run(d.buildArgs(false, "connect", address)...)
}

// Pair runs `adb pair address code`, completing the wireless-debugging
// pairing handshake Android's pairing-code dialog starts.
func (d *Device) Pair(address, code string) ([]byte, error) {
	return d.run(d.buildArgs(false, "pair", address, code)...)
}

// Shell runs `adb shell <args...>` against this device, discarding stdout.
func (d *Device) Shell(args ...string) error {
	_, err := d.run(d.buildArgs(true, append([]string{"shell"}, args...)...)...)
	return err
}

// Pull copies remotePath off the device and returns its bytes, the way
// adb_screenshot retrieves a staged screencap.
func (d *Device) Pull(remotePath string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "scrcpy-mask-pull-*")
	if err != nil {
		return nil, fmt.Errorf("pull %s: create temp file: %w", remotePath, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if _, err := d.run(d.buildArgs(true, "pull", remotePath, tmpPath)...); err != nil {
		return nil, fmt.Errorf("pull %s: %w", remotePath, err)
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("pull %s: read local copy: %w", remotePath, err)
	}
	return data, nil
}

// CompanionArgs describes the parameters of one launched companion session.
type CompanionArgs struct {
	Version    string
	SCID       string
	Video      bool
	DisplayID  int32
	VideoCodec string // "h264", "h265", "av1"; only meaningful when Video
	VideoBitRate uint32
	VideoMaxSize uint32
	VideoMaxFPS  uint32
}

// StartCompanion launches the scrcpy companion Server class through `adb
// shell`, returning once the process has been started (not once it has
// finished — the caller drives it via the session controller's socket
// accepts instead).
func (d *Device) StartCompanion(a CompanionArgs) (*exec.Cmd, error) {
	parts := []string{
		a.Version,
		"scid=" + a.SCID,
		"video=" + boolArg(a.Video),
		fmt.Sprintf("display_id=%d", a.DisplayID),
		"audio=false",
	}
	if a.Video {
		parts = append(parts, "video_codec="+a.VideoCodec, fmt.Sprintf("video_bit_rate=%d", a.VideoBitRate))
		if a.VideoMaxSize > 0 {
			parts = append(parts, fmt.Sprintf("video_max_size=%d", a.VideoMaxSize))
		}
		if a.VideoMaxFPS > 0 {
			parts = append(parts, fmt.Sprintf("video_max_fps=%d", a.VideoMaxFPS))
		}
	}

	shellArgs := d.buildArgs(true,
		"shell",
		"CLASSPATH="+ServerJARRemotePath,
		"app_process",
		"/",
		"com.genymobile.scrcpy.Server",
	)
	shellArgs = append(shellArgs, parts...)

	cmd := exec.Command(d.bin(), shellArgs...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start companion: %w", err)
	}
	log.Info().Str("component", "adbexec").Str("scid", a.SCID).Msg("launched companion")
	return cmd, nil
}

func boolArg(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// GenerateSCID produces an 8-digit decimal scid: the first two digits are
// fixed at "10", the remaining six digits are random in 1-9 (never 0, so the
// string never carries a spurious leading zero once the "10" prefix is
// stripped by a naive parser). This keeps the resulting integer comfortably
// below MAX_INT32 (10000000-10999999 << 2147483647).
func GenerateSCID() (string, error) {
	var b strings.Builder
	b.WriteString("10")
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9))
		if err != nil {
			return "", fmt.Errorf("generate scid: %w", err)
		}
		b.WriteByte(byte('1' + n.Int64()))
	}
	return b.String(), nil
}

// ADBListedDevice is one entry of `adb devices`.
type ADBListedDevice struct {
	Serial string
	State  string
}

// ListDevices runs `adb devices` and parses its output.
func ListDevices(opts Options) ([]ADBListedDevice, error) {
	d := NewDevice(opts)
	out, err := d.run(d.buildArgs(false, "devices")...)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return parseDevicesOutput(string(out)), nil
}

func parseDevicesOutput(output string) []ADBListedDevice {
	devices := []ADBListedDevice{}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 2 {
			devices = append(devices, ADBListedDevice{Serial: parts[0], State: parts[1]})
		}
	}
	return devices
}
