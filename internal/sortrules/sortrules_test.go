package sortrules_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"snapvault/internal/config"
	"snapvault/internal/sortrules"
)

func defaultRules() sortrules.Rules {
	cfg := config.Default()
	return sortrules.RulesFromConfig(&cfg)
}

func TestSignatureStableAndSensitive(t *testing.T) {
	a := defaultRules()
	b := defaultRules()
	if a.Signature() != b.Signature() {
		t.Fatal("identical rules must share a signature")
	}
	b.FolderStructure = "YYYY"
	if a.Signature() == b.Signature() {
		t.Fatal("changing the folder structure must change the signature")
	}
	c := defaultRules()
	c.TagIgnoreList = append([]string{"zzz"}, c.TagIgnoreList...)
	if a.Signature() == c.Signature() {
		t.Fatal("changing the ignore list must change the signature")
	}
}

func TestExpectedDestinationLayouts(t *testing.T) {
	capture := time.Date(2024, 3, 15, 10, 15, 2, 0, time.Local)
	tests := []struct {
		structure string
		want      string
	}{
		{"YYYY", "2024"},
		{"YYYY/MM", filepath.Join("2024", "03")},
		{"YYYY/MM/DD", filepath.Join("2024", "03", "15")},
	}
	for _, tc := range tests {
		rules := defaultRules()
		rules.FolderStructure = tc.structure
		rules.RenameEnabled = false
		got, err := rules.ExpectedDestination("/src/photo.JPG", capture)
		if err != nil {
			t.Fatalf("ExpectedDestination(%s): %v", tc.structure, err)
		}
		if got != filepath.Join(tc.want, "photo.JPG") {
			t.Fatalf("structure %s: got %s", tc.structure, got)
		}
	}
}

func TestExpectedDestinationRejectsUnknownStructure(t *testing.T) {
	rules := defaultRules()
	rules.FolderStructure = "MM/YYYY"
	if _, err := rules.ExpectedDestination("/src/a.jpg", time.Now()); err == nil {
		t.Fatal("expected error for unknown structure")
	}
}

func TestRenamePattern(t *testing.T) {
	rules := defaultRules()
	rules.FolderStructure = "YYYY/MM"
	rules.RenameEnabled = true
	rules.RenamePattern = "{date}_{time}"
	rules.LowercaseExt = true
	rules.FolderTagsEnabled = false

	capture := time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)
	got, err := rules.ExpectedDestination("/src/IMG_1234.JPG", capture)
	if err != nil {
		t.Fatalf("ExpectedDestination: %v", err)
	}
	want := filepath.Join("2024", "03", "20240315_143000.jpg")
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRenamePatternWithTag(t *testing.T) {
	rules := defaultRules()
	rules.RenameEnabled = true
	rules.RenamePattern = "{date}_{time}_{tag}"
	rules.FolderTagsEnabled = true

	capture := time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)
	got, err := rules.ExpectedDestination("/vacation italy/IMG_1234.JPG", capture)
	if err != nil {
		t.Fatalf("ExpectedDestination: %v", err)
	}
	if filepath.Base(got) != "20240315_143000_Vacation_Italy.jpg" {
		t.Fatalf("unexpected filename: %s", filepath.Base(got))
	}

	// A camera dump folder yields no tag; the placeholder collapses cleanly.
	got, err = rules.ExpectedDestination("/DCIM/100APPLE/IMG_1234.JPG", capture)
	if err != nil {
		t.Fatalf("ExpectedDestination: %v", err)
	}
	if filepath.Base(got) != "20240315_143000.jpg" {
		t.Fatalf("unexpected filename: %s", filepath.Base(got))
	}
}

func TestRenameRejectsUnknownPlaceholder(t *testing.T) {
	rules := defaultRules()
	rules.RenameEnabled = true
	rules.RenamePattern = "{datum}"
	if _, err := rules.ExpectedDestination("/src/a.jpg", time.Now()); err == nil {
		t.Fatal("expected error for unknown placeholder")
	}
}

func TestCaptureTimeFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
	}{
		{"IMG_20240315_101502.jpg", time.Date(2024, 3, 15, 10, 15, 2, 0, time.Local)},
		{"20240315_101502.mp4", time.Date(2024, 3, 15, 10, 15, 2, 0, time.Local)},
		{"IMG-20240315-WA0001.jpg", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
		{"2024-03-15 beach.jpg", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
	}
	dir := t.TempDir()
	for _, tc := range tests {
		path := filepath.Join(dir, tc.name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", tc.name, err)
		}
		got, err := sortrules.CaptureTime(path)
		if err != nil {
			t.Fatalf("CaptureTime(%s): %v", tc.name, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("CaptureTime(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCaptureTimeFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holiday.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stamp := time.Date(2023, 7, 1, 12, 0, 0, 0, time.Local)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	got, err := sortrules.CaptureTime(path)
	if err != nil {
		t.Fatalf("CaptureTime: %v", err)
	}
	if !got.Equal(stamp) {
		t.Fatalf("expected mtime fallback %v, got %v", stamp, got)
	}
}

func TestCaptureTimeRejectsImplausibleDates(t *testing.T) {
	dir := t.TempDir()
	// Looks like a date pattern but month 88 is nonsense; mtime wins.
	path := filepath.Join(dir, "20248801.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stamp := time.Date(2022, 1, 2, 3, 4, 5, 0, time.Local)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	got, err := sortrules.CaptureTime(path)
	if err != nil {
		t.Fatalf("CaptureTime: %v", err)
	}
	if !got.Equal(stamp) {
		t.Fatalf("expected mtime fallback, got %v", got)
	}
}

func TestTagFromPath(t *testing.T) {
	rules := defaultRules()
	rules.FolderTagsEnabled = true

	tests := []struct {
		path string
		want string
	}{
		{"/photos/Vacation Italy/IMG_1.jpg", "Vacation_Italy"},
		{"/archive/DCIM/100APPLE/IMG_1.jpg", "Archive"},
		{"/DCIM/100APPLE/IMG_1.jpg", ""},
		// "photos" is on the default ignore list, the date folder is
		// numbers-only, so nothing qualifies.
		{"/photos/2024-03-15/IMG_1.jpg", ""},
		{"/x/ab/IMG_1.jpg", ""},
	}
	for _, tc := range tests {
		if got := rules.TagFromPath(tc.path); got != tc.want {
			t.Fatalf("TagFromPath(%s) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
