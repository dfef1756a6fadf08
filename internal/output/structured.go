package output

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/aaronvstory/Project-Exporter/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	previewLength   = 200
	previewEllipsis = "..."
)

// StructuredInput carries everything the JSON and YAML builders need.
type StructuredInput struct {
	DocumentInput
	ExportDate time.Time
	TokenModel string
}

// buildDocument assembles the shared document structure marshaled by both
// structured formats.
func buildDocument(input StructuredInput) types.ExportDocument {
	document := types.ExportDocument{
		ProjectName:   input.ProjectName,
		ExportDate:    input.ExportDate.Format(time.RFC3339),
		StructureOnly: input.StructureOnly,
		LLMOptimized:  input.LLMOptimize,
		Tree:          input.Tree,
	}

	if input.StructureOnly {
		return document
	}

	for _, fileEvent := range input.Files {
		fileRecord := types.FileRecord{
			Path:    fileEvent.Entry.RelativePath,
			Content: fileEvent.Content,
			Skipped: fileEvent.SkipReason,
		}
		if input.LLMOptimize {
			fileRecord.FileType = FileTypeLabel(fileEvent.Entry.RelativePath)
			fileRecord.SemanticType = SemanticType(fileEvent.Entry.RelativePath)
			fileRecord.SizeBytes = fileEvent.Entry.SizeBytes
			fileRecord.LastModified = fileEvent.Entry.LastModified
			if fileEvent.SkipReason == "" {
				fileRecord.LineCount = strings.Count(fileEvent.Content, "\n") + 1
				fileRecord.Preview = contentPreview(fileEvent.Content)
			}
			fileRecord.Tokens = fileEvent.Tokens
			fileRecord.Model = fileEvent.Model
		}
		document.Files = append(document.Files, fileRecord)
	}
	return document
}

// contentPreview truncates content for structured output. The cut backs up to
// a rune boundary so the preview stays valid UTF-8.
func contentPreview(content string) string {
	if len(content) <= previewLength {
		return content
	}
	cutIndex := previewLength
	for cutIndex > 0 && !utf8.RuneStart(content[cutIndex]) {
		cutIndex--
	}
	return content[:cutIndex] + previewEllipsis
}

// BuildJSONDocument marshals the export document as indented JSON.
func BuildJSONDocument(input StructuredInput) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(buildDocument(input), indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded) + "\n", nil
}

// BuildYAMLDocument marshals the export document as YAML.
func BuildYAMLDocument(input StructuredInput) (string, error) {
	encoded, yamlEncodeError := yaml.Marshal(buildDocument(input))
	if yamlEncodeError != nil {
		return "", yamlEncodeError
	}
	return string(encoded), nil
}
