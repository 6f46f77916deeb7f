// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine_test

import (
	"testing"
	"time"

	"github.com/hashicorp/go-unpack/engine"
	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg := engine.NewConfig()

	assert.EqualValues(t, 0750, cfg.CustomCreateDirMode())
	assert.EqualValues(t, 0640, cfg.CustomDecompressFileMode())
	assert.EqualValues(t, 1<<30, cfg.MaxExtractionSize())
	assert.EqualValues(t, 1<<30, cfg.MaxInputSize())
	assert.EqualValues(t, 100000, cfg.MaxFiles())
	assert.Equal(t, 10*time.Minute, cfg.ProgramTimeout())
	assert.False(t, cfg.NoPrograms())
	assert.NotNil(t, cfg.Logger())
	assert.NotNil(t, cfg.Target())
	assert.NotNil(t, cfg.TelemetryHook())
}

func TestCheckLimits(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *engine.Config
		value   int64
		wantErr error
	}{
		{name: "files under limit", cfg: engine.NewConfig(engine.WithMaxFiles(2)), value: 2},
		{name: "files over limit", cfg: engine.NewConfig(engine.WithMaxFiles(2)), value: 3, wantErr: engine.ErrMaxFilesExceeded},
		{name: "files unlimited", cfg: engine.NewConfig(engine.WithMaxFiles(-1)), value: 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.CheckMaxFiles(tt.value)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	size := []struct {
		name    string
		cfg     *engine.Config
		value   int64
		wantErr error
	}{
		{name: "size under limit", cfg: engine.NewConfig(engine.WithMaxExtractionSize(10)), value: 10},
		{name: "size over limit", cfg: engine.NewConfig(engine.WithMaxExtractionSize(10)), value: 11, wantErr: engine.ErrMaxExtractionSizeExceeded},
		{name: "size unlimited", cfg: engine.NewConfig(engine.WithMaxExtractionSize(-1)), value: 1 << 40},
	}
	for _, tt := range size {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.CheckExtractionSize(tt.value)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigOptions(t *testing.T) {
	target := engine.NewTargetDisk()
	cfg := engine.NewConfig(
		engine.WithContinueOnUnsupportedFiles(true),
		engine.WithCustomCreateDirMode(0700),
		engine.WithCustomDecompressFileMode(0600),
		engine.WithDenySymlinkExtraction(true),
		engine.WithDropFileAttributes(true),
		engine.WithInsecureTraverseSymlinks(true),
		engine.WithMaxDictionarySize(1<<20),
		engine.WithMaxInputSize(-1),
		engine.WithNoPrograms(true),
		engine.WithNoUntarAfterDecompression(true),
		engine.WithProgramTimeout(time.Second),
		engine.WithTarget(target),
		engine.WithTelemetryHook(nil),
	)

	assert.True(t, cfg.ContinueOnUnsupportedFiles())
	assert.EqualValues(t, 0700, cfg.CustomCreateDirMode())
	assert.EqualValues(t, 0600, cfg.CustomDecompressFileMode())
	assert.True(t, cfg.DenySymlinkExtraction())
	assert.True(t, cfg.DropFileAttributes())
	assert.True(t, cfg.TraverseSymlinks())
	assert.EqualValues(t, 1<<20, cfg.MaxDictionarySize())
	assert.EqualValues(t, -1, cfg.MaxInputSize())
	assert.True(t, cfg.NoPrograms())
	assert.True(t, cfg.NoUntarAfterDecompression())
	assert.Equal(t, time.Second, cfg.ProgramTimeout())
	assert.Same(t, target, cfg.Target())
	assert.NotNil(t, cfg.TelemetryHook(), "nil hook falls back to noop")
}

func TestConfigOptionsIgnoreInvalid(t *testing.T) {
	cfg := engine.NewConfig(engine.WithProgramTimeout(-time.Second), engine.WithTarget(nil))
	assert.Equal(t, 10*time.Minute, cfg.ProgramTimeout())
	assert.NotNil(t, cfg.Target())
}
