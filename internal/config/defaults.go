package config

const (
	defaultConfigPath             = "~/.config/repitch/config.toml"
	defaultCacheDir               = "~/.cache/repitch"
	defaultDownloadsDir           = "~/Downloads"
	defaultRootsFile              = "~/.config/repitch/roots.json"
	defaultLogDir                 = "~/.local/share/repitch/logs"
	defaultAPIBind                = "127.0.0.1:5001"
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultSoxBinary              = "sox"
	defaultToolTimeoutSeconds     = 0
	defaultThumbnailOffsetSeconds = 1.0
	defaultThumbnailWorkers       = 4
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"

	// APIBindEnv overrides paths.api_bind when set.
	APIBindEnv = "REPITCH_API_BIND"
)

var defaultVideoExtensions = []string{".mp4"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:     defaultCacheDir,
			DownloadsDir: defaultDownloadsDir,
			RootsFile:    defaultRootsFile,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Tools: Tools{
			FFmpeg:                 defaultFFmpegBinary,
			FFprobe:                defaultFFprobeBinary,
			Sox:                    defaultSoxBinary,
			TimeoutSeconds:         defaultToolTimeoutSeconds,
			ThumbnailOffsetSeconds: defaultThumbnailOffsetSeconds,
		},
		Library: Library{
			VideoExtensions:  append([]string(nil), defaultVideoExtensions...),
			ThumbnailWorkers: defaultThumbnailWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
