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

package image

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/arduino/go-paths-helper"
	"github.com/sirupsen/logrus"
	"go.bug.st/downloader/v2"
)

// IsRemote tells whether location must be downloaded before loading.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch downloads the image at location into dir, keeping the base name
// of the URL path so the extension still selects the format.
func Fetch(location string, dir *paths.Path) (*paths.Path, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, &LoadError{Path: location, Err: err}
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "image.bin"
	}

	if err := dir.MkdirAll(); err != nil {
		logrus.Error(err)
		return nil, &LoadError{Path: location, Err: err}
	}
	imagePath := dir.Join(name)
	if err := imagePath.WriteFile(nil); err != nil {
		logrus.Error(err)
		return nil, &LoadError{Path: location, Err: err}
	}

	logrus.Infof("Downloading %s to %s", location, imagePath)
	d, err := downloader.Download(imagePath.String(), location, downloader.NoResume)
	if err != nil {
		logrus.Error(err)
		return nil, &LoadError{Path: location, Err: err}
	}
	if err := Download(d); err != nil {
		logrus.Error(err)
		return nil, &LoadError{Path: location, Err: err}
	}
	return imagePath, nil
}

// Download runs d to completion and turns HTTP errors into Go errors.
func Download(d *downloader.Downloader) error {
	if d == nil {
		// This signal means that the file is already downloaded
		return nil
	}
	if err := d.Run(); err != nil {
		return fmt.Errorf("failed to download file from %s : %s", d.URL, err)
	}
	// The URL is not reachable for some reason
	if d.Resp.StatusCode >= 400 && d.Resp.StatusCode <= 599 {
		return fmt.Errorf("%s", d.Resp.Status)
	}
	return nil
}
