package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSorting()
	c.normalizeRenaming()
	c.normalizeFolderTags()
	c.normalizeVerify()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSorting() {
	c.Sorting.FolderStructure = strings.TrimSpace(c.Sorting.FolderStructure)
	if c.Sorting.FolderStructure == "" {
		c.Sorting.FolderStructure = defaultFolderStructure
	}
}

func (c *Config) normalizeRenaming() {
	c.Renaming.Pattern = strings.TrimSpace(c.Renaming.Pattern)
	if c.Renaming.Pattern == "" {
		c.Renaming.Pattern = defaultRenamePattern
	}
}

func (c *Config) normalizeFolderTags() {
	if len(c.FolderTags.IgnoreList) == 0 {
		c.FolderTags.IgnoreList = append([]string{}, defaultTagIgnoreList...)
	}
	if c.FolderTags.MinLength <= 0 {
		c.FolderTags.MinLength = defaultTagMinLength
	}
	if c.FolderTags.MaxLength <= 0 {
		c.FolderTags.MaxLength = defaultTagMaxLength
	}
}

func (c *Config) normalizeVerify() {
	c.Verify.Algorithm = strings.ToLower(strings.TrimSpace(c.Verify.Algorithm))
	if c.Verify.Algorithm == "" {
		c.Verify.Algorithm = defaultVerifyAlgorithm
	}
	c.Duplicates.OnCollision = strings.ToLower(strings.TrimSpace(c.Duplicates.OnCollision))
	if c.Duplicates.OnCollision == "" {
		c.Duplicates.OnCollision = defaultOnCollision
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
