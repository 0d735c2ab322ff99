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
	"fmt"

	"github.com/arduino/go-paths-helper"
	"github.com/bubtools/bubprg/flasher"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load returns the default session settings overridden by the YAML file
// at configFile. A nil configFile gives the defaults.
func Load(configFile *paths.Path) (flasher.Config, error) {
	config := flasher.DefaultConfig()
	if configFile == nil {
		return config, nil
	}

	data, err := configFile.ReadFile()
	if err != nil {
		return config, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config file %s: %w", configFile, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config file %s: %w", configFile, err)
	}
	logrus.
		WithField("file", configFile).
		WithField("chunk_size", config.ChunkSize).
		WithField("command_timeout", config.CommandTimeout).
		Debug("Loaded config")
	return config, nil
}
