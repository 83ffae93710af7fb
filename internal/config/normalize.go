package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Unify.OutDirName = strings.TrimSpace(c.Unify.OutDirName)
	if c.Unify.OutDirName == "" {
		c.Unify.OutDirName = defaultOutDirName
	}
	c.Unify.Optimize = strings.ToLower(strings.TrimSpace(c.Unify.Optimize))
	if c.Unify.Optimize == "" {
		c.Unify.Optimize = defaultOptimize
	}
	if c.Unify.JPEG.MinKB < 0 {
		c.Unify.JPEG.MinKB = 0
	}
	if c.Unify.Workers < 0 {
		c.Unify.Workers = 0
	}
	if c.Search.BlockSize == 0 {
		c.Search.BlockSize = defaultSearchBlockSize
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
