package config

// DefaultExcludePatterns lists the entries omitted from exports when default
// filtering is enabled. The set covers version control metadata, dependency
// and IDE directories, compiled artifacts, and OS clutter. It is a product
// default, not a contract: callers disable it with UseDefaultExcludes=false
// or extend it via configuration and the -e flag.
var DefaultExcludePatterns = []string{
	".git",
	".gitignore",
	"__pycache__",
	"*.pyc",
	".DS_Store",
	"node_modules",
	".idea",
	".vscode",
	"*.log",
	"*.tmp",
	"*.temp",
	"*.swp",
	"~*",
	"Thumbs.db",
	"desktop.ini",
}

// DefaultMaxFileSize bounds how large a file may be before its content is
// skipped with a note instead of embedded in full.
const DefaultMaxFileSize int64 = 1 << 20
