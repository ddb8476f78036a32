package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// Store guards the persisted Config with a RWMutex (spec §5 "Shared
// resources") and saves synchronously to disk on every mutation, exactly
// as spec §6's "Persisted state" describes: config.json under the
// platform data dir for com.akichase.scrcpy-mask.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

// Open loads dataDir/config.json, creating it (seeded from def) if it
// does not yet exist.
func Open(dataDir string, def Config) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("config: create data dir: %w", err)
	}
	s := &Store{path: filepath.Join(dataDir, "config.json")}

	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.cfg = def
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read config.json: %w", err)
	}
	if err := json.Unmarshal(b, &s.cfg); err != nil {
		return nil, fmt.Errorf("config: parse config.json: %w", err)
	}
	return s, nil
}

func (s *Store) save() error {
	b, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode config.json: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("config: write config.json: %w", err)
	}
	return nil
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies a single key/value pair from `POST /api/config/update_config`,
// validating it against spec §6's enumerated rules before persisting. An
// unknown key or an invalid value for a known key is returned as-is; the
// facade layer turns that into a 400 (error kind 6: facade validation).
func (s *Store) Update(key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	if err := applyKey(&next, key, value); err != nil {
		return err
	}
	s.cfg = next
	return s.save()
}

func applyKey(cfg *Config, key string, value json.RawMessage) error {
	switch key {
	case "language":
		var v Language
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: language: %w", err)
		}
		if v != LanguageEnUS && v != LanguageZhCN {
			return fmt.Errorf("config: language: unknown value %q", v)
		}
		cfg.Language = v

	case "web_port":
		v, err := unmarshalPort(value)
		if err != nil {
			return fmt.Errorf("config: web_port: %w", err)
		}
		cfg.WebPort = v

	case "controller_port":
		v, err := unmarshalPort(value)
		if err != nil {
			return fmt.Errorf("config: controller_port: %w", err)
		}
		cfg.ControllerPort = v

	case "adb_path":
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: adb_path: %w", err)
		}
		if _, err := exec.LookPath(v); err != nil {
			return fmt.Errorf("config: adb_path: %q does not resolve on PATH: %w", v, err)
		}
		cfg.AdbPath = v

	case "always_on_top":
		var v bool
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: always_on_top: %w", err)
		}
		cfg.AlwaysOnTop = v

	case "vertical_mask_height":
		var v uint32
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: vertical_mask_height: %w", err)
		}
		cfg.VerticalMaskHeight = v

	case "horizontal_mask_width":
		var v uint32
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: horizontal_mask_width: %w", err)
		}
		cfg.HorizontalMaskWidth = v

	case "vertical_position":
		var v Position
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: vertical_position: %w", err)
		}
		cfg.VerticalPosition = v

	case "horizontal_position":
		var v Position
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: horizontal_position: %w", err)
		}
		cfg.HorizontalPosition = v

	case "mapping_label_opacity":
		var v float32
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: mapping_label_opacity: %w", err)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("config: mapping_label_opacity: %v out of range [0,1]", v)
		}
		cfg.MappingLabelOpacity = v

	case "clipboard_sync":
		var v bool
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: clipboard_sync: %w", err)
		}
		cfg.ClipboardSync = v

	case "video_codec":
		var v VideoCodec
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: video_codec: %w", err)
		}
		if v != VideoCodecH264 && v != VideoCodecH265 && v != VideoCodecAV1 {
			return fmt.Errorf("config: video_codec: unknown value %q", v)
		}
		cfg.VideoCodec = v

	case "video_bit_rate":
		var v uint32
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: video_bit_rate: %w", err)
		}
		cfg.VideoBitRate = v

	case "video_max_size":
		var v uint32
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: video_max_size: %w", err)
		}
		cfg.VideoMaxSize = v

	case "video_max_fps":
		var v uint32
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("config: video_max_fps: %w", err)
		}
		cfg.VideoMaxFPS = v

	default:
		return fmt.Errorf("config: unknown key %q", key)
	}
	return nil
}

func unmarshalPort(value json.RawMessage) (uint16, error) {
	var v uint16
	if err := json.Unmarshal(value, &v); err != nil {
		return 0, err
	}
	return v, nil
}
