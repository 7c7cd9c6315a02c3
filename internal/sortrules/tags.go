package sortrules

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cameraFolderPatterns match folder names generated by cameras and phones,
// which carry no organizational meaning.
var cameraFolderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d{3}[A-Z]{5}$`), // 100APPLE, 101ANDRO
	regexp.MustCompile(`^\d{3}_\d{4}$`),       // 100_0001
	regexp.MustCompile(`(?i)^IMG_\d+$`),       // IMG_0001
	regexp.MustCompile(`(?i)^DSC_?\d+$`),      // DSC0001, DSC_0001
	regexp.MustCompile(`(?i)^DCIM$`),          // DCIM
	regexp.MustCompile(`^\d{8}$`),             // bare date
}

const tagWalkDepth = 3

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	nonTagChars    = regexp.MustCompile(`[^\w\-]`)
	separatorRuns  = regexp.MustCompile(`[-_./\s]`)
)

// TagFromPath walks up from a file's parent folder looking for the first
// meaningful folder name and returns it formatted as a tag, or "" when none
// qualifies.
func (r Rules) TagFromPath(path string) string {
	current := filepath.Dir(path)
	for i := 0; i < tagWalkDepth; i++ {
		name := filepath.Base(current)
		parent := filepath.Dir(current)
		if name == "" || name == "." || name == string(filepath.Separator) || current == parent {
			break
		}
		if r.meaningfulFolder(name) {
			return r.formatTag(name)
		}
		current = parent
	}
	return ""
}

func (r Rules) meaningfulFolder(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return false
	}
	for _, ignored := range r.TagIgnoreList {
		if lower == strings.ToLower(ignored) {
			return false
		}
	}
	minLen, maxLen := r.TagMinLength, r.TagMaxLength
	if minLen <= 0 {
		minLen = 3
	}
	if maxLen <= 0 {
		maxLen = 40
	}
	if len(name) < minLen || len(name) > maxLen {
		return false
	}
	for _, pattern := range cameraFolderPatterns {
		if pattern.MatchString(name) {
			return false
		}
	}
	// Date-like or purely numeric names say nothing about content.
	if cleaned := separatorRuns.ReplaceAllString(name, ""); isDigits(cleaned) {
		return false
	}
	return strings.ContainsFunc(name, unicode.IsLetter)
}

func (r Rules) formatTag(name string) string {
	tag := strings.TrimSpace(name)
	tag = cases.Title(language.Und).String(tag)
	tag = whitespaceRuns.ReplaceAllString(tag, "_")
	tag = nonTagChars.ReplaceAllString(tag, "")
	tag = strings.Trim(tag, "_-")
	maxLen := r.TagMaxLength
	if maxLen <= 0 {
		maxLen = 40
	}
	if len(tag) > maxLen {
		tag = strings.TrimRight(tag[:maxLen], "_-")
	}
	return tag
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
