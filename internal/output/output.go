// Package output renders scanned trees and export documents in the supported
// formats: indented text, markdown, JSON, and YAML.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/aaronvstory/Project-Exporter/internal/types"
	"github.com/aaronvstory/Project-Exporter/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix = "/"
	linkArrow       = " -> "
	readErrorFormat = " [error: %s]"
)

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

// nodeLabel returns the display text for one tree node. Directories carry a
// trailing slash, links show their target, and unlistable directories carry
// an inline error marker so the failure stays visible in the rendered tree.
func nodeLabel(node *types.TreeNode) string {
	switch node.Kind {
	case types.EntryKindDirectory:
		label := node.Name + directorySuffix
		if node.ReadError != "" {
			label += fmt.Sprintf(readErrorFormat, node.ReadError)
		}
		return label
	case types.EntryKindLink:
		if node.LinkTarget != "" {
			return node.Name + linkArrow + node.LinkTarget
		}
		return node.Name
	default:
		return node.Name
	}
}

func renderTreeNode(writer io.Writer, node *types.TreeNode, prefix string, isRoot bool, isLast bool) {
	if node == nil {
		return
	}
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	fmt.Fprintf(writer, "%s%s\n", linePrefix, nodeLabel(node))
	for childIndex, childNode := range node.Children {
		if childNode == nil {
			continue
		}
		renderTreeNode(writer, childNode, childPrefix, false, childIndex == len(node.Children)-1)
	}
}

// WriteTree renders the directory tree to the provided writer. Two renderings
// of the same unchanged tree are byte-identical.
func WriteTree(writer io.Writer, rootNode *types.TreeNode) {
	if rootNode == nil {
		return
	}
	renderTreeNode(writer, rootNode, "", true, true)
}

// RenderTree returns the rendered tree as a string.
func RenderTree(rootNode *types.TreeNode) string {
	var builder strings.Builder
	WriteTree(&builder, rootNode)
	return builder.String()
}

// FormatSummaryLine formats an OutputSummary into the one-line run summary.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{}
	}
	label := "files"
	if summary.TotalFiles == 1 {
		label = "file"
	}
	extra := ""
	if summary.TotalTokens > 0 {
		extra = fmt.Sprintf(", %d tokens", summary.TotalTokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	totalSize := summary.TotalSize
	if totalSize == "" {
		totalSize = utils.FormatFileSize(0)
	}
	return fmt.Sprintf("Summary: %d %s, %s%s%s", summary.TotalFiles, label, totalSize, extra, modelSuffix)
}
