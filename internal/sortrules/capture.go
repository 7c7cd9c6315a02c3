package sortrules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// filenamePatterns are tried in order; the first plausible hit wins. Each
// pattern captures year, month, day and optionally hour, minute, second.
var filenamePatterns = []*regexp.Regexp{
	// 20240315_101502, IMG_20240315-101502
	regexp.MustCompile(`(\d{4})(\d{2})(\d{2})[_-](\d{2})(\d{2})(\d{2})`),
	// IMG-20240315-WA0001, VID-20240315-WA0012 (WhatsApp)
	regexp.MustCompile(`(?i)(?:IMG|VID)-(\d{4})(\d{2})(\d{2})-WA\d+`),
	// IMG_20240315, IMG-20240315
	regexp.MustCompile(`(?i)IMG[_-](\d{4})(\d{2})(\d{2})`),
	// bare 20240315 delimited by non-digits
	regexp.MustCompile(`(?:^|[^0-9])(\d{4})(\d{2})(\d{2})(?:[^0-9]|$)`),
	// 2024-03-15, 2024_03_15
	regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`),
	regexp.MustCompile(`(\d{4})_(\d{2})_(\d{2})`),
}

// CaptureTime infers when a file was captured: filename date patterns first,
// file modification time as the fallback. The fallback is always available,
// so the only error is a stat failure.
func CaptureTime(path string) (time.Time, error) {
	name := filepath.Base(path)
	if t, ok := timeFromFilename(name); ok {
		return t, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}

func timeFromFilename(name string) (time.Time, bool) {
	for _, pattern := range filenamePatterns {
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		year := atoi(m[1])
		month := atoi(m[2])
		day := atoi(m[3])
		hour, minute, second := 0, 0, 0
		if len(m) > 6 {
			hour = atoi(m[4])
			minute = atoi(m[5])
			second = atoi(m[6])
		}
		if !plausibleDate(year, month, day, hour, minute, second) {
			continue
		}
		return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true
	}
	return time.Time{}, false
}

func plausibleDate(year, month, day, hour, minute, second int) bool {
	if year < 1970 || year > time.Now().Year()+1 {
		return false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	if hour > 23 || minute > 59 || second > 59 {
		return false
	}
	return true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
