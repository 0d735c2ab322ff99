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

package globals

import (
	"github.com/arduino/go-paths-helper"
	"github.com/bubtools/bubprg/flasher"
)

var (
	// DownloadPath holds remote images for the lifetime of the process
	DownloadPath = paths.TempDir().Join("bubprg")
	LogLevel     string
	Verbose      bool
	// Config is the session configuration, set up by the root command
	Config = flasher.DefaultConfig()
)
