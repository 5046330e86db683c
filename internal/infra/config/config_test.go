package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Player: PlayerConfig{
					RepeatMode:          "all",
					AutoAdvance:         true,
					AutoAdvanceDelaySec: 10,
				},
				Log: LogConfig{Level: "debug", Output: "stdout"},
			},
			wantErr: false,
		},
		{
			name: "unknown repeat mode",
			config: Config{
				Player: PlayerConfig{
					RepeatMode:          "shuffle",
					AutoAdvanceDelaySec: 5,
				},
				Log: LogConfig{Level: "info"},
			},
			wantErr: true,
			errMsg:  "RepeatMode",
		},
		{
			name: "delay below minimum",
			config: Config{
				Player: PlayerConfig{
					RepeatMode:          "none",
					AutoAdvanceDelaySec: 0,
				},
				Log: LogConfig{Level: "info"},
			},
			wantErr: true,
			errMsg:  "AutoAdvanceDelaySec",
		},
		{
			name: "delay above maximum",
			config: Config{
				Player: PlayerConfig{
					RepeatMode:          "none",
					AutoAdvanceDelaySec: 7200,
				},
				Log: LogConfig{Level: "info"},
			},
			wantErr: true,
			errMsg:  "AutoAdvanceDelaySec",
		},
		{
			name: "unknown log level",
			config: Config{
				Player: PlayerConfig{
					RepeatMode:          "none",
					AutoAdvanceDelaySec: 5,
				},
				Log: LogConfig{Level: "verbose"},
			},
			wantErr: true,
			errMsg:  "Level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestConfig_ValidateStatePath(t *testing.T) {
	dir := t.TempDir()

	cfg := Config{
		Player: PlayerConfig{RepeatMode: "none", AutoAdvanceDelaySec: 5},
		State:  StateConfig{Enabled: true, Path: dir},
		Log:    LogConfig{Level: "info"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a file")

	// A path that does not exist yet is fine, it is created on first save.
	cfg.State.Path = filepath.Join(dir, "state.db")
	assert.NoError(t, cfg.Validate())

	// Persistence disabled skips the check entirely.
	cfg.State = StateConfig{Enabled: false, Path: dir}
	assert.NoError(t, cfg.Validate())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upnext.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "player:\n  auto_advance: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Player.RepeatMode)
	assert.True(t, cfg.Player.AutoAdvance)
	assert.Equal(t, 5, cfg.Player.AutoAdvanceDelaySec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, "log:\n  level: info\nstate:\n  enabled: true\n")
	statePath := filepath.Join(t.TempDir(), "custom.db")
	t.Setenv("UPNEXT_LOG_LEVEL", "debug")
	t.Setenv("UPNEXT_STATE_PATH", statePath)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, statePath, cfg.State.Path)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := writeConfigFile(t, "player: [not, a, mapping]\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_GuardAccessors(t *testing.T) {
	cfg := Config{
		Guards: map[string]GuardConfig{
			"queue_limit_guard": {
				Enabled:  true,
				Settings: map[string]any{"max_items": 10},
			},
			"media_kind_guard": {Enabled: false},
		},
	}

	assert.True(t, cfg.IsGuardEnabled("queue_limit_guard"))
	assert.False(t, cfg.IsGuardEnabled("media_kind_guard"))
	assert.False(t, cfg.IsGuardEnabled("no_such_guard"))

	assert.Equal(t, map[string]any{"max_items": 10}, cfg.GuardSettings("queue_limit_guard"))
	assert.Nil(t, cfg.GuardSettings("no_such_guard"))
}

func TestConfig_AutoAdvanceDelay(t *testing.T) {
	cfg := Config{Player: PlayerConfig{AutoAdvanceDelaySec: 7}}
	assert.Equal(t, "7s", cfg.AutoAdvanceDelay().String())
}
