package wav_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"repitch/internal/media/wav"
	"repitch/internal/testsupport"
)

func TestDurationSecondsOfPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	testsupport.WriteWAV(t, path, 48000, 2, 1.5)

	got, err := wav.DurationSeconds(path)
	if err != nil {
		t.Fatalf("DurationSeconds: %v", err)
	}
	if math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("expected 1.5s, got %v", got)
	}
}

func TestReadHeaderSkipsUnknownChunks(t *testing.T) {
	plain := testsupport.WAVBytes(8000, 1, 2)

	// Insert an odd-length LIST chunk (padded to even) between fmt and data.
	var buf bytes.Buffer
	buf.Write(plain[:36])
	buf.WriteString("LIST")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(5))
	buf.WriteString("INFOx")
	buf.WriteByte(0)
	buf.Write(plain[36:])
	data := buf.Bytes()

	header, err := wav.ReadHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if header.SampleRate != 8000 || header.Channels != 1 || header.BitsPerSample != 16 {
		t.Fatalf("unexpected header %+v", header)
	}
	if header.Frames() != 16000 {
		t.Fatalf("expected 16000 frames, got %d", header.Frames())
	}
}

func TestReadHeaderClampsOverstatedData(t *testing.T) {
	data := testsupport.WAVBytes(8000, 1, 1)
	binary.LittleEndian.PutUint32(data[40:44], 0xFFFFFFFF)

	header, err := wav.ReadHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if header.DataSize != int64(len(data)-44) {
		t.Fatalf("expected clamp to %d, got %d", len(data)-44, header.DataSize)
	}
}

func TestReadHeaderRejectsNonWAV(t *testing.T) {
	tests := map[string][]byte{
		"empty":         nil,
		"not riff":      []byte("ID3\x03\x00\x00\x00\x00\x00\x00\x00\x00"),
		"riff not wave": append([]byte("RIFF\x04\x00\x00\x00AVI "), make([]byte, 8)...),
		"no chunks":     []byte("RIFF\x04\x00\x00\x00WAVE"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := wav.ReadHeader(bytes.NewReader(data), int64(len(data))); !errors.Is(err, wav.ErrNotWAV) {
				t.Fatalf("expected ErrNotWAV, got %v", err)
			}
		})
	}
}

func TestDurationSecondsMissingFile(t *testing.T) {
	_, err := wav.DurationSeconds(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestZeroSampleRate(t *testing.T) {
	if _, err := (wav.Header{}).DurationSeconds(); !errors.Is(err, wav.ErrNotWAV) {
		t.Fatalf("expected ErrNotWAV, got %v", err)
	}
}
