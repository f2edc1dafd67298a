package api

// VideoSummary describes a discovered video.
type VideoSummary struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// VideoListResponse wraps the video listing.
type VideoListResponse struct {
	Videos []VideoSummary `json:"videos"`
}

// PathRequest names a search root to add or remove.
type PathRequest struct {
	Path string `json:"path" validate:"required"`
}

// PathsResponse lists the registered search roots.
type PathsResponse struct {
	OK    bool     `json:"ok,omitempty"`
	Paths []string `json:"paths"`
}

// ExtractAudioRequest selects the video whose audio is extracted.
type ExtractAudioRequest struct {
	ID string `json:"id" validate:"required"`
}

// PitchRequest selects a video and a shift; also used by store-video.
type PitchRequest struct {
	ID        string    `json:"id" validate:"required"`
	Semitones Semitones `json:"semitones"`
}

// AudioResponse describes a playable audio artifact.
type AudioResponse struct {
	OK              bool     `json:"ok"`
	AudioURL        string   `json:"audio_url"`
	DurationSeconds *float64 `json:"duration_seconds"`
	Duration        string   `json:"duration"`
	Filename        string   `json:"filename,omitempty"`
}

// StoreVideoResponse reports where the muxed video was written.
type StoreVideoResponse struct {
	OK         bool   `json:"ok"`
	OutputPath string `json:"output_path"`
}

// AudioMetaResponse reports the base audio duration.
type AudioMetaResponse struct {
	DurationSeconds *float64 `json:"duration_seconds"`
	Duration        string   `json:"duration"`
}

// VideoInfoResponse identifies a source video.
type VideoInfoResponse struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Thumbnail string `json:"thumbnail"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// ServerStatus aggregates server runtime information for the CLI.
type ServerStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	Bind         string             `json:"bind"`
	CacheDir     string             `json:"cache_dir"`
	DownloadsDir string             `json:"downloads_dir"`
	RootsFile    string             `json:"roots_file"`
	Roots        []string           `json:"roots"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
