package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateUnify(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateUnify() error {
	switch c.Unify.Optimize {
	case "none", "light", "full":
	default:
		return fmt.Errorf("unify.optimize must be one of none, light, full (got %q)", c.Unify.Optimize)
	}
	if c.Unify.JPEG.Quality < 1 || c.Unify.JPEG.Quality > 100 {
		return fmt.Errorf("unify.jpeg.quality must be between 1 and 100 (got %d)", c.Unify.JPEG.Quality)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.BlockSize < 1 {
		return errors.New("search.block_size must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}
