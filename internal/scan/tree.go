package scan

import (
	"path/filepath"

	"github.com/aaronvstory/Project-Exporter/internal/types"
	"github.com/aaronvstory/Project-Exporter/internal/utils"
)

// TreeResult pairs an assembled node tree with the flat deterministic entry
// order the walk produced.
type TreeResult struct {
	Root    *types.TreeNode
	Entries []types.DirectoryEntry
	Files   []FileEvent
}

// BuildTree walks options.Root and assembles the full tree in one pass. The
// nodes of directories that could not be listed carry ReadError and have no
// children.
func BuildTree(options Options) (*TreeResult, error) {
	treeResult := &TreeResult{}
	var directoryStack []*types.TreeNode

	appendChild := func(childNode *types.TreeNode) {
		parentNode := directoryStack[len(directoryStack)-1]
		parentNode.Children = append(parentNode.Children, childNode)
	}

	walkError := Walk(options, func(walkEvent Event) error {
		switch walkEvent.Kind {
		case EventEnterDirectory:
			directoryNode := &types.TreeNode{
				Name:         walkEvent.Directory.Entry.Name,
				RelativePath: walkEvent.Directory.Entry.RelativePath,
				Kind:         types.EntryKindDirectory,
				Depth:        walkEvent.Directory.Entry.Depth,
				LastModified: walkEvent.Directory.Entry.LastModified,
				ReadError:    walkEvent.Directory.ReadError,
			}
			if len(directoryStack) == 0 {
				directoryNode.Name = filepath.Base(options.Root)
				treeResult.Root = directoryNode
			} else {
				appendChild(directoryNode)
			}
			directoryStack = append(directoryStack, directoryNode)
			treeResult.Entries = append(treeResult.Entries, walkEvent.Directory.Entry)

		case EventFile:
			fileNode := &types.TreeNode{
				Name:         walkEvent.File.Entry.Name,
				RelativePath: walkEvent.File.Entry.RelativePath,
				Kind:         walkEvent.File.Entry.Kind,
				Depth:        walkEvent.File.Entry.Depth,
				Size:         utils.FormatFileSize(walkEvent.File.Entry.SizeBytes),
				SizeBytes:    walkEvent.File.Entry.SizeBytes,
				LastModified: walkEvent.File.Entry.LastModified,
				MimeType:     walkEvent.File.MimeType,
				Tokens:       walkEvent.File.Tokens,
			}
			appendChild(fileNode)
			treeResult.Entries = append(treeResult.Entries, walkEvent.File.Entry)
			treeResult.Files = append(treeResult.Files, *walkEvent.File)

		case EventLink:
			linkNode := &types.TreeNode{
				Name:         walkEvent.Link.Entry.Name,
				RelativePath: walkEvent.Link.Entry.RelativePath,
				Kind:         types.EntryKindLink,
				Depth:        walkEvent.Link.Entry.Depth,
				LastModified: walkEvent.Link.Entry.LastModified,
				LinkTarget:   walkEvent.Link.Target,
			}
			appendChild(linkNode)
			treeResult.Entries = append(treeResult.Entries, walkEvent.Link.Entry)

		case EventLeaveDirectory:
			directoryStack = directoryStack[:len(directoryStack)-1]
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return treeResult, nil
}
