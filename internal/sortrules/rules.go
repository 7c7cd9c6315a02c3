package sortrules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"snapvault/internal/config"
)

// Rules is the destination-mapping policy of an organizing run, carried as a
// plain value so path computation stays a pure function of (rules, file).
type Rules struct {
	FolderStructure   string
	RenameEnabled     bool
	RenamePattern     string
	LowercaseExt      bool
	FolderTagsEnabled bool
	TagIgnoreList     []string
	TagMinLength      int
	TagMaxLength      int
	OnCollision       string
}

// RulesFromConfig snapshots the mapping-relevant sections of the config.
func RulesFromConfig(cfg *config.Config) Rules {
	ignore := make([]string, len(cfg.FolderTags.IgnoreList))
	copy(ignore, cfg.FolderTags.IgnoreList)
	return Rules{
		FolderStructure:   cfg.Sorting.FolderStructure,
		RenameEnabled:     cfg.Renaming.Enabled,
		RenamePattern:     cfg.Renaming.Pattern,
		LowercaseExt:      cfg.Renaming.LowercaseExt,
		FolderTagsEnabled: cfg.FolderTags.Enabled,
		TagIgnoreList:     ignore,
		TagMinLength:      cfg.FolderTags.MinLength,
		TagMaxLength:      cfg.FolderTags.MaxLength,
		OnCollision:       cfg.Duplicates.OnCollision,
	}
}

// Signature is an opaque fingerprint of the rules. Two runs with the same
// signature mapped files identically; a signature mismatch between a run
// record and the current config means reconstruction would diverge.
func (r Rules) Signature() string {
	ignore := make([]string, len(r.TagIgnoreList))
	copy(ignore, r.TagIgnoreList)
	sort.Strings(ignore)
	canonical := fmt.Sprintf(
		"structure=%s|rename=%t|pattern=%s|lowercase=%t|tags=%t|ignore=%s|taglen=%d-%d|collision=%s",
		r.FolderStructure,
		r.RenameEnabled,
		r.RenamePattern,
		r.LowercaseExt,
		r.FolderTagsEnabled,
		strings.Join(ignore, ","),
		r.TagMinLength,
		r.TagMaxLength,
		r.OnCollision,
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

var folderLayouts = map[string]string{
	"YYYY":       "2006",
	"YYYY/MM":    "2006/01",
	"YYYY/MM/DD": "2006/01/02",
}

// ExpectedDestination computes the destination path for a source file,
// relative to the destination root. An unusable folder structure or rename
// pattern is an error: callers reconstructing a mapping must not guess.
func (r Rules) ExpectedDestination(sourcePath string, captureTime time.Time) (string, error) {
	layout, ok := folderLayouts[r.FolderStructure]
	if !ok {
		return "", fmt.Errorf("unusable folder structure %q", r.FolderStructure)
	}
	folder := captureTime.Format(layout)

	name := filepath.Base(sourcePath)
	if r.RenameEnabled {
		renamed, err := r.renderFilename(sourcePath, captureTime)
		if err != nil {
			return "", err
		}
		name = renamed
	}
	return filepath.Join(folder, name), nil
}

var underscoreRuns = regexp.MustCompile(`_+`)

func (r Rules) renderFilename(sourcePath string, captureTime time.Time) (string, error) {
	pattern := r.RenamePattern
	if pattern == "" {
		return "", fmt.Errorf("renaming enabled with empty pattern")
	}

	leftover := pattern
	for _, placeholder := range []string{"{date}", "{time}", "{original}", "{tag}"} {
		leftover = strings.ReplaceAll(leftover, placeholder, "")
	}
	if strings.ContainsAny(leftover, "{}") {
		return "", fmt.Errorf("rename pattern %q has unknown placeholders", pattern)
	}

	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := pattern
	name = strings.ReplaceAll(name, "{date}", captureTime.Format("20060102"))
	name = strings.ReplaceAll(name, "{time}", captureTime.Format("150405"))
	name = strings.ReplaceAll(name, "{original}", stem)
	if strings.Contains(name, "{tag}") {
		tag := ""
		if r.FolderTagsEnabled {
			tag = r.TagFromPath(sourcePath)
		}
		name = strings.ReplaceAll(name, "{tag}", tag)
	}

	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "", fmt.Errorf("rename pattern %q produced an empty name", pattern)
	}

	if r.LowercaseExt {
		ext = strings.ToLower(ext)
	}
	return name + ext, nil
}
