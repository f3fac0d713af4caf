package ignore

// DefaultIgnorePatterns are doublestar patterns, relative to the store root, that are
// never indexed. They cover sync-client litter, editor temp files and tool directories
// that turn up on shared file stores.
var DefaultIgnorePatterns = []string{
	// Version control
	"**/.git",
	"**/.svn",
	"**/.hg",

	// Dependencies and caches
	"**/node_modules",
	"**/__pycache__",
	"**/.cache",
	"**/.venv",

	// OS files
	"**/.DS_Store",
	"**/._*",
	"**/Thumbs.db",
	"**/desktop.ini",
	"**/.Trash*",
	"**/$RECYCLE.BIN",

	// Editor and office lock files
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/~$*",
	"**/.~lock.*#",

	// Sync clients
	"**/.sync",
	"**/*.part",
	"**/.owncloudsync.log",
	"**/.sync_*.db*",
	"**/*.nextcloud-part",
}
