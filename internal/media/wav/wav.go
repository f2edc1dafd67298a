// Package wav reads RIFF/WAVE headers to report stream format and duration
// without decoding samples.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotWAV reports input that is not a RIFF/WAVE stream.
var ErrNotWAV = errors.New("wav: not a RIFF/WAVE stream")

// Header is the subset of the fmt and data chunks needed for timing.
type Header struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      int64
}

// Frames returns the number of sample frames in the data chunk.
func (h Header) Frames() int64 {
	if h.BlockAlign == 0 {
		return 0
	}
	return h.DataSize / int64(h.BlockAlign)
}

// DurationSeconds is frames divided by sample rate.
func (h Header) DurationSeconds() (float64, error) {
	if h.SampleRate == 0 {
		return 0, fmt.Errorf("%w: zero sample rate", ErrNotWAV)
	}
	return float64(h.Frames()) / float64(h.SampleRate), nil
}

// ReadHeader scans chunks until both fmt and data have been seen. size is the
// total stream length and bounds a data chunk whose declared size overstates
// what was written.
func ReadHeader(r io.ReadSeeker, size int64) (Header, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Header{}, ErrNotWAV
	}

	var (
		h       Header
		haveFmt bool
		offset  int64 = 12
	)
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			return Header{}, fmt.Errorf("%w: missing chunks: %v", ErrNotWAV, err)
		}
		offset += 8
		id := string(chunk[0:4])
		length := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			if length < 16 {
				return Header{}, fmt.Errorf("%w: short fmt chunk", ErrNotWAV)
			}
			var body [16]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return Header{}, fmt.Errorf("%w: %v", ErrNotWAV, err)
			}
			h.AudioFormat = binary.LittleEndian.Uint16(body[0:2])
			h.Channels = binary.LittleEndian.Uint16(body[2:4])
			h.SampleRate = binary.LittleEndian.Uint32(body[4:8])
			h.ByteRate = binary.LittleEndian.Uint32(body[8:12])
			h.BlockAlign = binary.LittleEndian.Uint16(body[12:14])
			h.BitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true
			if err := skip(r, length-16+length%2); err != nil {
				return Header{}, err
			}
		case "data":
			if !haveFmt {
				return Header{}, fmt.Errorf("%w: data chunk before fmt", ErrNotWAV)
			}
			if size > 0 && offset+length > size {
				length = size - offset
			}
			h.DataSize = length
			return h, nil
		default:
			if err := skip(r, length+length%2); err != nil {
				return Header{}, err
			}
		}
		offset += length + length%2
	}
}

// DurationSeconds opens path and reports its duration.
func DurationSeconds(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	header, err := ReadHeader(file, info.Size())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return header.DurationSeconds()
}

func skip(r io.Seeker, n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := r.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	return nil
}
