package artifact

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"repitch/internal/mediaid"
)

// Kind names a class of derived artifact.
type Kind string

const (
	KindThumbnail    Kind = "thumbnail"
	KindBaseAudio    Kind = "base-audio"
	KindPitchedAudio Kind = "pitched-audio"
	KindMuxedOutput  Kind = "muxed-output"
)

// Key addresses a single artifact. Semitones is only meaningful for pitched
// audio and muxed output.
type Key struct {
	ID        mediaid.ID
	Kind      Kind
	Semitones int
}

// Thumbnail returns the key of the still frame for id.
func Thumbnail(id mediaid.ID) Key { return Key{ID: id, Kind: KindThumbnail} }

// BaseAudio returns the key of the extracted audio for id.
func BaseAudio(id mediaid.ID) Key { return Key{ID: id, Kind: KindBaseAudio} }

// PitchedAudio returns the key of the audio for id shifted by semitones.
func PitchedAudio(id mediaid.ID, semitones int) Key {
	return Key{ID: id, Kind: KindPitchedAudio, Semitones: semitones}
}

// MuxedOutput returns the key of the re-muxed video for id.
func MuxedOutput(id mediaid.ID, semitones int) Key {
	return Key{ID: id, Kind: KindMuxedOutput, Semitones: semitones}
}

// sharesName reports whether distinct IDs can resolve to one location. Such
// artifacts carry an owner marker next to them.
func (k Key) sharesName() bool { return k.Kind == KindMuxedOutput }

// OwnerMarker returns the hidden sidecar that records which ID published
// location.
func OwnerMarker(location string) string {
	return filepath.Join(filepath.Dir(location), "."+filepath.Base(location)+".src")
}

func (k Key) String() string {
	switch k.Kind {
	case KindPitchedAudio, KindMuxedOutput:
		return fmt.Sprintf("%s/%s/%s", k.Kind, k.ID, SemitoneSuffix(k.Semitones))
	default:
		return fmt.Sprintf("%s/%s", k.Kind, k.ID)
	}
}

// SemitoneSuffix renders a signed offset as used in artifact names: "+3",
// "-2", "+0".
func SemitoneSuffix(semitones int) string {
	sign := "+"
	abs := semitones
	if semitones < 0 {
		sign = "-"
		abs = -semitones
	}
	return sign + strconv.Itoa(abs)
}

// Layout maps keys to locations on durable storage.
type Layout struct {
	CacheDir     string
	DownloadsDir string
}

// Cache subdirectories under Layout.CacheDir.
const (
	ThumbsDir = "thumbs"
	AudioDir  = "audio"
	PitchDir  = "pitch"
)

// Resolve returns the canonical location for key. It performs no I/O; the
// identifier is decoded only to validate it and, for muxed output, to derive
// the source file name.
func (l Layout) Resolve(key Key) (string, error) {
	source, err := mediaid.Decode(key.ID)
	if err != nil {
		return "", err
	}
	id := string(key.ID)
	switch key.Kind {
	case KindThumbnail:
		return filepath.Join(l.CacheDir, ThumbsDir, id+".jpg"), nil
	case KindBaseAudio:
		return filepath.Join(l.CacheDir, AudioDir, id+".wav"), nil
	case KindPitchedAudio:
		return filepath.Join(l.CacheDir, PitchDir, id+"_"+SemitoneSuffix(key.Semitones)+".wav"), nil
	case KindMuxedOutput:
		base := filepath.Base(source)
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		return filepath.Join(l.DownloadsDir, stem+"_"+SemitoneSuffix(key.Semitones)+ext), nil
	default:
		return "", fmt.Errorf("unknown artifact kind %q", key.Kind)
	}
}

// Dirs lists every directory artifacts are written into.
func (l Layout) Dirs() []string {
	return []string{
		filepath.Join(l.CacheDir, ThumbsDir),
		filepath.Join(l.CacheDir, AudioDir),
		filepath.Join(l.CacheDir, PitchDir),
		l.DownloadsDir,
	}
}
