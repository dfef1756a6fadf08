package output

import (
	"path/filepath"
	"strings"
)

const (
	SemanticSourceCode    = "source_code"
	SemanticDocumentation = "documentation"
	SemanticData          = "data"
	SemanticImage         = "image"
	SemanticWeb           = "web"
	SemanticConfiguration = "configuration"
	SemanticUnknown       = "unknown"
)

var semanticTypesByExtension = map[string]string{
	".py":   SemanticSourceCode,
	".go":   SemanticSourceCode,
	".js":   SemanticSourceCode,
	".ts":   SemanticSourceCode,
	".java": SemanticSourceCode,
	".cpp":  SemanticSourceCode,
	".c":    SemanticSourceCode,
	".cs":   SemanticSourceCode,
	".rs":   SemanticSourceCode,
	".md":   SemanticDocumentation,
	".txt":  SemanticDocumentation,
	".rst":  SemanticDocumentation,
	".json": SemanticData,
	".yaml": SemanticData,
	".yml":  SemanticData,
	".xml":  SemanticData,
	".jpg":  SemanticImage,
	".png":  SemanticImage,
	".gif":  SemanticImage,
	".svg":  SemanticImage,
	".html": SemanticWeb,
	".css":  SemanticWeb,
	".conf": SemanticConfiguration,
	".ini":  SemanticConfiguration,
	".env":  SemanticConfiguration,
	".toml": SemanticConfiguration,
}

// SemanticType classifies a file by extension into a coarse content category
// used by LLM-optimized exports.
func SemanticType(filePath string) string {
	extension := strings.ToLower(filepath.Ext(filePath))
	if semanticType, known := semanticTypesByExtension[extension]; known {
		return semanticType
	}
	return SemanticUnknown
}

// FileTypeLabel returns the bare extension without the leading dot, or
// "unknown" for extensionless files.
func FileTypeLabel(filePath string) string {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if extension == "" {
		return SemanticUnknown
	}
	return extension
}
