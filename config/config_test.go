/*
	bubprg
	Copyright (c) 2026 bubprg authors.  All right reserved.

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package config

import (
	"testing"
	"time"

	"github.com/arduino/go-paths-helper"
	"github.com/bubtools/bubprg/flasher"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	config, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, flasher.DefaultConfig(), config)
}

func TestLoadTestdata(t *testing.T) {
	config, err := Load(paths.New("testdata", "slow_link.yaml"))
	require.NoError(t, err)
	require.Equal(t, 32, config.ChunkSize)
	require.Equal(t, 2*time.Second, config.CommandTimeout)
	require.Equal(t, time.Minute, config.CRCTimeout)
	// untouched keys keep their defaults
	require.Equal(t, 4800, config.BaudRate)
	require.Equal(t, 5, config.ProbeAttempts)
}

func TestLoadRejectsInvalid(t *testing.T) {
	file := paths.New(t.TempDir()).Join("bad.yaml")
	require.NoError(t, file.WriteFile([]byte("chunk_size: 128\n")))
	_, err := Load(file)
	require.ErrorContains(t, err, "chunk size 128")

	require.NoError(t, file.WriteFile([]byte("command_timeout: soon\n")))
	_, err = Load(file)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(paths.New(t.TempDir()).Join("missing.yaml"))
	require.Error(t, err)
}
