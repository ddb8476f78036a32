// Package config holds the two layers of process configuration: a
// bootstrap layer read once from the environment via envconfig (ports,
// data directory, adb path before the user ever changes anything), and a
// mutable, persisted layer (config.json, spec §6) that the facade reads
// and updates at runtime.
package config

import "github.com/kelseyhightower/envconfig"

// Bootstrap is the process-level configuration read once at startup. The
// teacher has no config struct of its own; this mirrors the shape
// envconfig users in the pack (helixml-helix) bind: a flat struct with
// struct tags, defaults supplied inline.
type Bootstrap struct {
	DataDir        string `envconfig:"DATA_DIR" default:""`
	WebPort        uint16 `envconfig:"WEB_PORT" default:"27183"`
	ControllerPort uint16 `envconfig:"CONTROLLER_PORT" default:"27184"`
	AdbPath        string `envconfig:"ADB_PATH" default:"adb"`
}

// LoadBootstrap reads envconfig-prefixed (SCRCPY_MASK_*) environment
// variables into a Bootstrap, applying its defaults for anything unset.
func LoadBootstrap() (Bootstrap, error) {
	var b Bootstrap
	if err := envconfig.Process("scrcpy_mask", &b); err != nil {
		return Bootstrap{}, err
	}
	return b, nil
}

// Language is one of the two values spec §6's update_config accepts for
// the "language" key.
type Language string

const (
	LanguageEnUS Language = "en-US"
	LanguageZhCN Language = "zh-CN"
)

// VideoCodec mirrors wire.CodecID at the facade boundary, spelled the way
// spec §6 enumerates it (upper-case abbreviations rather than the 4CC tags
// the wire codec uses internally).
type VideoCodec string

const (
	VideoCodecH264 VideoCodec = "H264"
	VideoCodecH265 VideoCodec = "H265"
	VideoCodecAV1  VideoCodec = "AV1"
)

// Position is a window position, in desktop pixels.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Config is the persisted, mutable configuration of spec §6: every key
// `POST /api/config/update_config` can target, at its JSON field name.
type Config struct {
	Language             Language   `json:"language"`
	WebPort              uint16     `json:"web_port"`
	ControllerPort       uint16     `json:"controller_port"`
	AdbPath              string     `json:"adb_path"`
	AlwaysOnTop          bool       `json:"always_on_top"`
	VerticalMaskHeight   uint32     `json:"vertical_mask_height"`
	HorizontalMaskWidth  uint32     `json:"horizontal_mask_width"`
	VerticalPosition     Position   `json:"vertical_position"`
	HorizontalPosition   Position   `json:"horizontal_position"`
	MappingLabelOpacity  float32    `json:"mapping_label_opacity"`
	ClipboardSync        bool       `json:"clipboard_sync"`
	VideoCodec           VideoCodec `json:"video_codec"`
	VideoBitRate         uint32     `json:"video_bit_rate"`
	VideoMaxSize         uint32     `json:"video_max_size"`
	VideoMaxFPS          uint32     `json:"video_max_fps"`
}

// Default returns the configuration a freshly-created config.json gets,
// seeded from a Bootstrap so the env-supplied ports/adb path are the
// starting point rather than arbitrary literals.
func Default(b Bootstrap) Config {
	return Config{
		Language:            LanguageEnUS,
		WebPort:             b.WebPort,
		ControllerPort:      b.ControllerPort,
		AdbPath:             b.AdbPath,
		AlwaysOnTop:         false,
		VerticalMaskHeight:  1600,
		HorizontalMaskWidth: 2560,
		VerticalPosition:    Position{X: 0, Y: 0},
		HorizontalPosition:  Position{X: 0, Y: 0},
		MappingLabelOpacity: 0.5,
		ClipboardSync:       true,
		VideoCodec:          VideoCodecH264,
		VideoBitRate:        8_000_000,
		VideoMaxSize:        1280,
		VideoMaxFPS:         60,
	}
}
