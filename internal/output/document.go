package output

import (
	"fmt"
	"strings"

	"github.com/aaronvstory/Project-Exporter/internal/scan"
	"github.com/aaronvstory/Project-Exporter/internal/types"
)

const (
	fileOpenTagFormat    = "\n<file path=%q>\n"
	fileCloseTag         = "</file>\n"
	fileSkippedTagFormat = "\n<file path=%q skipped=%q />\n"

	markdownHeaderFormat      = "# Project Structure: %s\n\n"
	markdownTreeHeading       = "## Directory Tree\n\n```\n"
	markdownFenceClose        = "```\n"
	markdownContentsHeading   = "\n## File Contents\n\n"
	markdownFileHeadingFormat = "\n### File: `%s`\n"
	markdownTypeLineFormat    = "Type: %s\n"
	markdownFenceOpen         = "\n```\n"
	markdownSkipNoteFormat    = "\n### File: `%s`\n\n_Content skipped: %s._\n"
)

// DocumentInput carries everything the text and markdown builders need.
type DocumentInput struct {
	ProjectName   string
	Tree          *types.TreeNode
	Files         []scan.FileEvent
	StructureOnly bool
	LLMOptimize   bool
}

// BuildTextDocument renders the plain-text export document: the directory
// tree followed by each embedded file wrapped in path-tagged delimiters.
// Files whose bodies were skipped render a self-closing tag naming the
// reason, so the document records every file the tree lists.
func BuildTextDocument(input DocumentInput) string {
	var builder strings.Builder
	builder.WriteString(RenderTree(input.Tree))

	if input.StructureOnly {
		return builder.String()
	}

	for _, fileEvent := range input.Files {
		if fileEvent.SkipReason != "" {
			fmt.Fprintf(&builder, fileSkippedTagFormat, fileEvent.Entry.RelativePath, fileEvent.SkipReason)
			continue
		}
		fmt.Fprintf(&builder, fileOpenTagFormat, fileEvent.Entry.RelativePath)
		builder.WriteString(fileEvent.Content)
		if !strings.HasSuffix(fileEvent.Content, "\n") {
			builder.WriteString("\n")
		}
		builder.WriteString(fileCloseTag)
	}
	return builder.String()
}

// BuildMarkdownDocument renders the markdown export document: a fenced tree
// followed by per-file fenced code sections.
func BuildMarkdownDocument(input DocumentInput) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, markdownHeaderFormat, input.ProjectName)
	builder.WriteString(markdownTreeHeading)
	builder.WriteString(RenderTree(input.Tree))
	builder.WriteString(markdownFenceClose)

	if input.StructureOnly {
		return builder.String()
	}

	builder.WriteString(markdownContentsHeading)
	for _, fileEvent := range input.Files {
		if fileEvent.SkipReason != "" {
			fmt.Fprintf(&builder, markdownSkipNoteFormat, fileEvent.Entry.RelativePath, fileEvent.SkipReason)
			continue
		}
		fmt.Fprintf(&builder, markdownFileHeadingFormat, fileEvent.Entry.RelativePath)
		if input.LLMOptimize {
			fmt.Fprintf(&builder, markdownTypeLineFormat, SemanticType(fileEvent.Entry.RelativePath))
		}
		builder.WriteString(markdownFenceOpen)
		builder.WriteString(fileEvent.Content)
		if !strings.HasSuffix(fileEvent.Content, "\n") {
			builder.WriteString("\n")
		}
		builder.WriteString(markdownFenceClose)
	}
	return builder.String()
}
