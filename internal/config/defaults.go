package config

const (
	defaultDataDir         = "~/.local/share/worktoolkit"
	defaultLogDir          = "~/.local/share/worktoolkit/logs"
	defaultOutDirName      = "unified_files"
	defaultOptimize        = "light"
	defaultJPEGQuality     = 70
	defaultJPEGMinKB       = 64
	defaultSearchBlockSize = 20
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Unify: Unify{
			OutDirName: defaultOutDirName,
			Optimize:   defaultOptimize,
			JPEG: JPEG{
				Recompress:    true,
				Quality:       defaultJPEGQuality,
				MinKB:         defaultJPEGMinKB,
				OnlyIfSmaller: true,
			},
		},
		Search: Search{
			BlockSize: defaultSearchBlockSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
