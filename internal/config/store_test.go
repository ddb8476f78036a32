package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestOpenSeedsDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Default(Bootstrap{WebPort: 27183, ControllerPort: 27184, AdbPath: "adb"}))
	require.NoError(t, err)
	assert.Equal(t, LanguageEnUS, s.Get().Language)
	assert.Equal(t, uint16(27183), s.Get().WebPort)
}

func TestOpenReloadsPersistedConfig(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Default(Bootstrap{WebPort: 27183, ControllerPort: 27184, AdbPath: "adb"}))
	require.NoError(t, err)
	require.NoError(t, s.Update("clipboard_sync", rawJSON(t, false)))

	reloaded, err := Open(dir, Default(Bootstrap{}))
	require.NoError(t, err)
	assert.False(t, reloaded.Get().ClipboardSync)
}

func TestUpdateRejectsOutOfRangeOpacity(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Default(Bootstrap{}))
	require.NoError(t, err)
	err = s.Update("mapping_label_opacity", rawJSON(t, 1.5))
	assert.Error(t, err)
}

func TestUpdateRejectsUnknownLanguage(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Default(Bootstrap{}))
	require.NoError(t, err)
	err = s.Update("language", rawJSON(t, "fr-FR"))
	assert.Error(t, err)
}

func TestUpdateRejectsUnresolvableAdbPath(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Default(Bootstrap{}))
	require.NoError(t, err)
	err = s.Update("adb_path", rawJSON(t, "/no/such/binary-xyz"))
	assert.Error(t, err)
}

func TestUpdateRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Default(Bootstrap{}))
	require.NoError(t, err)
	err = s.Update("not_a_real_key", rawJSON(t, 1))
	assert.Error(t, err)
}

func TestUpdateVideoCodecAndPosition(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Default(Bootstrap{}))
	require.NoError(t, err)

	require.NoError(t, s.Update("video_codec", rawJSON(t, "H265")))
	assert.Equal(t, VideoCodecH265, s.Get().VideoCodec)

	require.NoError(t, s.Update("horizontal_position", rawJSON(t, Position{X: 10, Y: 20})))
	assert.Equal(t, Position{X: 10, Y: 20}, s.Get().HorizontalPosition)
}
