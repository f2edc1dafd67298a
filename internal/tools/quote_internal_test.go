package tools

import "testing"

func TestQuoteCommand(t *testing.T) {
	got := quoteCommand("ffmpeg", []string{"-i", "/media/My Clip's.mp4", "", "out.wav"})
	want := `ffmpeg -i '/media/My Clip'\''s.mp4' '' out.wav`
	if got != want {
		t.Fatalf("quoteCommand:\n got %s\nwant %s", got, want)
	}
}
