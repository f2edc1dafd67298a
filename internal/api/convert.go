package api

import (
	"net/url"
	"strconv"

	"repitch/internal/mediaid"
	"repitch/internal/pipeline"
)

// ThumbnailURL is the route serving a video's thumbnail.
func ThumbnailURL(id mediaid.ID) string {
	return "/thumbs/" + string(id) + ".jpg"
}

// AudioURL is the ranged streaming route for a track.
func AudioURL(id mediaid.ID, semitones int) string {
	q := url.Values{}
	q.Set("id", string(id))
	q.Set("pitch", strconv.Itoa(semitones))
	return "/audio?" + q.Encode()
}

// FromVideo converts a discovered video.
func FromVideo(v pipeline.Video) VideoSummary {
	return VideoSummary{
		ID:        string(v.ID),
		Filename:  v.Filename,
		Title:     v.Title,
		Thumbnail: ThumbnailURL(v.ID),
	}
}

// FromVideos converts a listing, never returning nil so it encodes as [].
func FromVideos(videos []pipeline.Video) []VideoSummary {
	out := make([]VideoSummary, 0, len(videos))
	for _, v := range videos {
		out = append(out, FromVideo(v))
	}
	return out
}

// FromAudioResult converts an extraction or pitch result.
func FromAudioResult(res pipeline.AudioResult) AudioResponse {
	return AudioResponse{
		OK:              true,
		AudioURL:        AudioURL(res.ID, res.Semitones),
		DurationSeconds: res.DurationSeconds,
		Duration:        res.Duration(),
		Filename:        res.Filename,
	}
}

// FromVideoInfo converts a resolved source video.
func FromVideoInfo(info pipeline.VideoInfo) VideoInfoResponse {
	return VideoInfoResponse{
		Filename:  info.Filename,
		Path:      info.Path,
		Thumbnail: ThumbnailURL(info.ID),
	}
}
