// Package types defines every cross‑package data structure used by the project-exporter CLI.
package types

const (
	EntryKindFile      = "file"
	EntryKindDirectory = "directory"
	EntryKindBinary    = "binary"
	EntryKindLink      = "link"

	CommandExport = "export"
	CommandTree   = "tree"

	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// ValidatedRoot is an absolute directory path that already passed existence checks.
type ValidatedRoot struct {
	AbsolutePath string
	Name         string
}

// DirectoryEntry describes one file or directory discovered during traversal.
// Entries are immutable once produced and arrive in deterministic depth-first order.
type DirectoryEntry struct {
	AbsolutePath string `json:"-" yaml:"-"`
	RelativePath string `json:"path" yaml:"path"`
	Name         string `json:"name" yaml:"name"`
	Kind         string `json:"kind" yaml:"kind"`
	Depth        int    `json:"depth" yaml:"depth"`
	SizeBytes    int64  `json:"sizeBytes,omitempty" yaml:"sizeBytes,omitempty"`
	LastModified string `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
}

// ExportOptions configures a single export run.
type ExportOptions struct {
	Format             string
	IncludeContents    bool
	LLMOptimize        bool
	ExcludePatterns    []string
	UseDefaultExcludes bool
	UseGitignore       bool
	UseIgnoreFile      bool
	IncludeGit         bool
	MaxFileSize        int64
	TokensEnabled      bool
	TokenModel         string
	OutputPath         string
	ToStdout           bool
	ToClipboard        bool
}

// ExportResult captures the outcome of one export run. It is created once per
// run and handed to the shell for display.
type ExportResult struct {
	OutputPath     string
	Success        bool
	Message        string
	FilesProcessed int
	FilesSkipped   int
	TotalBytes     int64
	TotalTokens    int
}

// TreeNode represents a node of the rendered directory tree.
type TreeNode struct {
	Name         string      `json:"name" yaml:"name"`
	RelativePath string      `json:"path" yaml:"path"`
	Kind         string      `json:"kind" yaml:"kind"`
	Depth        int         `json:"depth" yaml:"depth"`
	Size         string      `json:"size,omitempty" yaml:"size,omitempty"`
	SizeBytes    int64       `json:"-" yaml:"-"`
	LastModified string      `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
	MimeType     string      `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Tokens       int         `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	LinkTarget   string      `json:"linkTarget,omitempty" yaml:"linkTarget,omitempty"`
	ReadError    string      `json:"readError,omitempty" yaml:"readError,omitempty"`
	Children     []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// FileRecord is one file embedded in a structured (JSON/YAML) export document.
type FileRecord struct {
	Path         string `json:"path" yaml:"path"`
	Content      string `json:"content,omitempty" yaml:"content,omitempty"`
	Skipped      string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	FileType     string `json:"fileType,omitempty" yaml:"fileType,omitempty"`
	SemanticType string `json:"semanticType,omitempty" yaml:"semanticType,omitempty"`
	SizeBytes    int64  `json:"sizeBytes,omitempty" yaml:"sizeBytes,omitempty"`
	LastModified string `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
	LineCount    int    `json:"lineCount,omitempty" yaml:"lineCount,omitempty"`
	Preview      string `json:"contentPreview,omitempty" yaml:"contentPreview,omitempty"`
	Tokens       int    `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
}

// ExportDocument is the top-level structure written by JSON and YAML formats.
type ExportDocument struct {
	ProjectName   string       `json:"projectName" yaml:"projectName"`
	ExportDate    string       `json:"exportDate" yaml:"exportDate"`
	StructureOnly bool         `json:"structureOnly" yaml:"structureOnly"`
	LLMOptimized  bool         `json:"llmOptimized" yaml:"llmOptimized"`
	Tree          *TreeNode    `json:"tree" yaml:"tree"`
	Files         []FileRecord `json:"files,omitempty" yaml:"files,omitempty"`
}

// OutputSummary captures aggregate information about an export run.
type OutputSummary struct {
	TotalFiles  int
	TotalSize   string
	TotalTokens int
	Model       string
}
