package config

const (
	defaultWorkDir           = "~/.local/share/discforge/work"
	defaultLogDir            = "~/.local/share/discforge/logs"
	defaultHistoryDir        = "~/.local/share/discforge/history"
	defaultFFmpeg            = "ffmpeg"
	defaultFFprobe           = "ffprobe"
	defaultDVDAuthor         = "dvdauthor"
	defaultMkisofs           = "mkisofs"
	defaultGrowisofs         = "growisofs"
	defaultCCExtractor       = "ccextractor"
	defaultProbeDuration     = 20
	defaultProbeFastDivisor  = 4
	defaultOpticalMultiplier = 4
	defaultDVDStandard       = "pal"
	defaultMaxISOMiB         = 4400
	defaultOverheadPercent   = 5
	defaultDVDAudioKbps      = 192
	defaultMinVideoKbps      = 1000
	defaultMaxVideoKbps      = 8000
	defaultChapterMinutes    = 5
	defaultDVDDevice         = "/dev/sr0"
	defaultWaitForDiscSecs   = 300
	defaultMP4AudioKbps      = 128
	defaultAVIVideoKbps      = 1800
	defaultAVIAudioKbps      = 160
	defaultNormalizeMode     = "compress"
	defaultTargetMeanDB      = -20.0
	defaultTargetPeakDB      = -1.0
	defaultToleranceDB       = 1.0
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    defaultWorkDir,
			LogDir:     defaultLogDir,
			HistoryDir: defaultHistoryDir,
		},
		Tools: Tools{
			FFmpeg:      defaultFFmpeg,
			FFprobe:     defaultFFprobe,
			DVDAuthor:   defaultDVDAuthor,
			Mkisofs:     defaultMkisofs,
			Growisofs:   defaultGrowisofs,
			CCExtractor: defaultCCExtractor,
		},
		Probe: Probe{
			DurationSeconds:          defaultProbeDuration,
			FastDivisor:              defaultProbeFastDivisor,
			OpticalTimeoutMultiplier: defaultOpticalMultiplier,
		},
		DVD: DVD{
			Standard:               defaultDVDStandard,
			MaxISOMiB:              defaultMaxISOMiB,
			OverheadPercent:        defaultOverheadPercent,
			AudioBitrateKbps:       defaultDVDAudioKbps,
			MinVideoKbps:           defaultMinVideoKbps,
			MaxVideoKbps:           defaultMaxVideoKbps,
			ChapterIntervalMinutes: defaultChapterMinutes,
			Device:                 defaultDVDDevice,
			WaitForDisc:            true,
			WaitForDiscTimeoutSecs: defaultWaitForDiscSecs,
		},
		MP4: MP4{
			Tablet:           ScreenProfile{MaxWidth: 1280, MaxHeight: 800, BitsPerPixel: 0.10},
			Phone:            ScreenProfile{MaxWidth: 854, MaxHeight: 480, BitsPerPixel: 0.09},
			Android:          ScreenProfile{MaxWidth: 1920, MaxHeight: 1080, BitsPerPixel: 0.08},
			AudioBitrateKbps: defaultMP4AudioKbps,
		},
		AVI: AVI{
			VideoKbps:        defaultAVIVideoKbps,
			AudioBitrateKbps: defaultAVIAudioKbps,
			MaxWidth:         720,
			MaxHeight:        576,
		},
		Normalize: Normalize{
			Enabled:      false,
			Mode:         defaultNormalizeMode,
			TargetMeanDB: defaultTargetMeanDB,
			TargetPeakDB: defaultTargetPeakDB,
			ToleranceDB:  defaultToleranceDB,
		},
		Subtitles: Subtitles{
			Cleanup:      true,
			DowngradeSSA: false,
		},
		Behavior: Behavior{
			AutoRotate:          true,
			PreferOriginalAudio: true,
			AudienceLanguages:   []string{"en"},
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
