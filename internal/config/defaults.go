package config

const (
	defaultStateDir        = "~/.local/share/snapvault/state"
	defaultLogDir          = "~/.local/share/snapvault/logs"
	defaultFolderStructure = "YYYY/MM"
	defaultRenamePattern   = "{date}_{time}"
	defaultOnCollision     = "rename"
	defaultVerifyAlgorithm = "sha256"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultTagMinLength    = 3
	defaultTagMaxLength    = 40
)

// defaultTagIgnoreList covers folder names that carry no meaning as tags:
// camera dump directories, generic sorting buckets, and transfer folders.
var defaultTagIgnoreList = []string{
	"tosort", "unsorted", "misc", "backup", "temp", "tmp",
	"download", "downloads", "dcim", "camera", "pictures",
	"photos", "images", "camera roll", "new folder", "untitled",
	"unknown", "other", "various", "screenshot", "screenshots",
	"inbox", "import", "imported", "export", "exports",
	"shared", "public", "private",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Sorting: Sorting{
			FolderStructure: defaultFolderStructure,
		},
		Renaming: Renaming{
			Enabled:      false,
			Pattern:      defaultRenamePattern,
			LowercaseExt: true,
		},
		FolderTags: FolderTags{
			Enabled:   false,
			MinLength: defaultTagMinLength,
			MaxLength: defaultTagMaxLength,
		},
		Duplicates: Duplicates{
			OnCollision: defaultOnCollision,
		},
		Verify: Verify{
			Algorithm:      defaultVerifyAlgorithm,
			ContentSearch:  false,
			IncludeDryRuns: false,
		},
		Cleanup: Cleanup{
			DryRunDefault: true,
			AllowQuick:    false,
			DeletionLog:   true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
