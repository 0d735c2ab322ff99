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

package flasher

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the phase a BubFlasher session is in.
type State int

const (
	StateIdle State = iota
	StateProbing
	StateTransferring
	StateReconciling
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:         "idle",
	StateProbing:      "probing",
	StateTransferring: "transferring",
	StateReconciling:  "reconciling",
	StateDone:         "done",
	StateFailed:       "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Progress is reported before each chunk goes on the wire.
type Progress struct {
	Address   int
	Size      int
	Sent      int
	Total     int
	Percent   int
	Elapsed   time.Duration
	Remaining time.Duration
}

// ProgressCallback receives transfer progress. It runs on the transfer
// goroutine and should return quickly.
type ProgressCallback func(Progress)

// FlashResult summarizes a transfer session.
type FlashResult struct {
	Port          string `json:"port,omitempty"`
	MinAddr       int    `json:"min_address"`
	MaxAddr       int    `json:"max_address"`
	Chunks        int    `json:"chunks"`
	BytesVerified int    `json:"bytes_verified"`
	FileCRC       string `json:"file_crc"`
	DeviceCRC     string `json:"device_crc,omitempty"`
	Reconciled    bool   `json:"reconciled"`
	CRCMatch      bool   `json:"crc_match"`
	State         State  `json:"state"`
	Error         string `json:"error,omitempty"`
}

func (r *FlashResult) String() string {
	if !r.Reconciled {
		return fmt.Sprintf("File CRC  : %s", r.FileCRC)
	}
	return fmt.Sprintf("Device CRC: %s\nFile CRC  : %s", r.DeviceCRC, r.FileCRC)
}

// Data implements feedback.Result interface
func (r *FlashResult) Data() interface{} {
	return r
}

// BubFlasher drives an AVR ISP bub to store images in its I2C EEPROM.
type BubFlasher struct {
	port     Port
	channel  *Channel
	config   Config
	progress ProgressCallback
	state    State
	closed   bool
}

// NewBubFlasher opens portAddress and prepares a session using config.
func NewBubFlasher(portAddress string, config Config) (*BubFlasher, error) {
	if err := config.Validate(); err != nil {
		logrus.Error(err)
		return nil, err
	}
	port, err := openSerial(portAddress, config.BaudRate)
	if err != nil {
		return nil, err
	}
	return NewBubFlasherWithPort(port, config), nil
}

// NewBubFlasherWithPort prepares a session on an already open port. The
// config is assumed valid.
func NewBubFlasherWithPort(port Port, config Config) *BubFlasher {
	return &BubFlasher{
		port:    port,
		channel: NewChannel(port),
		config:  config,
	}
}

// SetProgressCallback sets the callback invoked before each chunk.
func (f *BubFlasher) SetProgressCallback(callback ProgressCallback) {
	f.progress = callback
}

// State returns the phase the session reached.
func (f *BubFlasher) State() State {
	return f.state
}

// Close the port used by this flasher. Calling it more than once is harmless.
func (f *BubFlasher) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if err := f.port.Close(); err != nil {
		logrus.Error(err)
		return err
	}
	return nil
}

// FlashImage runs a whole session: probe, chunked write and verify, CRC
// reconciliation. The port is closed when it returns.
//
// A nil result means the device never answered the probe. When a chunk
// fails the result is still returned, holding what was verified up to
// that point, together with the error.
func (f *BubFlasher) FlashImage(img Image) (*FlashResult, error) {
	defer f.Close()

	f.state = StateProbing
	if err := f.hello(); err != nil {
		f.state = StateFailed
		return nil, err
	}

	res := &FlashResult{
		MinAddr: img.MinAddr(),
		MaxAddr: img.MaxAddr(),
	}

	f.state = StateTransferring
	crc, transferErr := f.transfer(img, res)
	res.FileCRC = FormatCRC(crc)
	if transferErr != nil {
		res.Error = transferErr.Error()
	}

	// the device computes its CRC from address 0 only
	if img.MinAddr() == 0 {
		f.state = StateReconciling
		deviceCRC, err := f.deviceCRC(img.MaxAddr() + 1)
		if err != nil {
			f.state = StateFailed
			res.State = f.state
			if transferErr != nil {
				logrus.Errorf("CRC query after failed transfer: %s", err)
				return res, transferErr
			}
			res.Error = err.Error()
			return res, err
		}
		res.Reconciled = true
		res.DeviceCRC = deviceCRC
		res.CRCMatch = strings.EqualFold(strings.TrimSpace(deviceCRC), res.FileCRC)
		if !res.CRCMatch {
			logrus.Warnf("CRC mismatch: device %s, file %s", deviceCRC, res.FileCRC)
		}
	} else {
		logrus.Infof("Image starts at %06x, skipping CRC check", img.MinAddr())
	}

	if transferErr != nil {
		f.state = StateFailed
	} else {
		f.state = StateDone
	}
	res.State = f.state
	return res, transferErr
}

// hello probes the bub, which also turns off the readback echo.
func (f *BubFlasher) hello() error {
	var err error
	for attempt := 1; attempt <= f.config.ProbeAttempts; attempt++ {
		if _, err = f.channel.Send(probeCommand, statusOK, f.config.CommandTimeout); err == nil {
			logrus.Infof("Bub answered (try %d of %d)", attempt, f.config.ProbeAttempts)
			return nil
		}
		logrus.Debugf("Probe failed (try %d of %d): %s", attempt, f.config.ProbeAttempts, err)
	}
	err = &DeviceUnresponsiveError{Attempts: f.config.ProbeAttempts, Err: err}
	logrus.Error(err)
	return err
}

// transfer sends every chunk of img and returns the CRC of the verified ones.
func (f *BubFlasher) transfer(img Image, res *FlashResult) (uint16, error) {
	chunks := planChunks(img.MinAddr(), img.MaxAddr(), f.config.ChunkSize)
	total := img.MaxAddr() - img.MinAddr() + 1
	start := time.Now()

	var crc uint16
	sent := 0
	for _, c := range chunks {
		data := chunkData(img, c)
		sent += c.Size
		f.reportProgress(c, sent, total, time.Since(start))

		if err := f.flashChunk(c, data); err != nil {
			logrus.Error(err)
			return crc, err
		}
		crc = UpdateCRC16(crc, data)
		res.Chunks++
		res.BytesVerified += c.Size
	}
	logrus.Infof("Verified %d bytes in %d chunks", res.BytesVerified, res.Chunks)
	return crc, nil
}

// flashChunk fills the bub buffer, commits it, reads it back and compares.
func (f *BubFlasher) flashChunk(c Chunk, data []byte) error {
	logrus.Debugf("Flashing chunk %s", c)
	commands := []string{
		bufWriteCommand(data),
		eepromWriteCommand(c.Address),
		eepromReadCommand(c.Address, c.Size),
		compareCommand,
	}
	for _, command := range commands {
		if _, err := f.channel.Send(command, statusOK, f.config.CommandTimeout); err != nil {
			return err
		}
	}
	return nil
}

// deviceCRC asks the bub for the CRC of the first length EEPROM bytes.
func (f *BubFlasher) deviceCRC(length int) (string, error) {
	res, err := f.channel.Send(eepromCRCCommand(length), "", f.config.CRCTimeout)
	if err != nil {
		logrus.Error(err)
		return "", err
	}
	logrus.Debugf("Device CRC over %d bytes: %s", length, res)
	return res, nil
}

func (f *BubFlasher) reportProgress(c Chunk, sent, total int, elapsed time.Duration) {
	if f.progress == nil {
		return
	}
	p := Progress{
		Address: c.Address,
		Size:    c.Size,
		Sent:    sent,
		Total:   total,
		Percent: sent * 100 / total,
		Elapsed: elapsed,
	}
	if sent > 0 {
		p.Remaining = time.Duration(float64(elapsed) * float64(total-sent) / float64(sent)).Round(time.Second)
	}
	f.progress(p)
}
