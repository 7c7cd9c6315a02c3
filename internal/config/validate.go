package config

import (
	"fmt"
)

var validFolderStructures = map[string]struct{}{
	"YYYY":       {},
	"YYYY/MM":    {},
	"YYYY/MM/DD": {},
}

var validCollisionPolicies = map[string]struct{}{
	"rename":    {},
	"skip":      {},
	"overwrite": {},
}

var validAlgorithms = map[string]struct{}{
	"sha256": {},
	"quick":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, ok := validFolderStructures[c.Sorting.FolderStructure]; !ok {
		return fmt.Errorf("sorting.folder_structure: unsupported value %q (use YYYY, YYYY/MM, or YYYY/MM/DD)", c.Sorting.FolderStructure)
	}
	if _, ok := validCollisionPolicies[c.Duplicates.OnCollision]; !ok {
		return fmt.Errorf("duplicates.on_collision: unsupported value %q (use rename, skip, or overwrite)", c.Duplicates.OnCollision)
	}
	if _, ok := validAlgorithms[c.Verify.Algorithm]; !ok {
		return fmt.Errorf("verify.algorithm: unsupported value %q (use sha256 or quick)", c.Verify.Algorithm)
	}
	if c.FolderTags.MinLength > c.FolderTags.MaxLength {
		return fmt.Errorf("folder_tags: min_length %d exceeds max_length %d", c.FolderTags.MinLength, c.FolderTags.MaxLength)
	}
	return nil
}
