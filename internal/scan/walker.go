// Package scan walks a directory tree in deterministic order, producing the
// entry stream consumed by the tree renderer and the content exporter.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aaronvstory/Project-Exporter/internal/tokenizer"
	"github.com/aaronvstory/Project-Exporter/internal/types"
	"github.com/aaronvstory/Project-Exporter/internal/utils"
)

const (
	// warningStatEntryFormat is used when file information cannot be retrieved.
	warningStatEntryFormat = "unable to stat %s: %v"
	// warningResolveLinkFormat is used when a symbolic link target cannot be resolved.
	warningResolveLinkFormat = "unable to resolve link %s: %v"
	// warningTokenCountFormat is used when token estimation fails for a file.
	warningTokenCountFormat = "failed to count tokens for %s: %v"

	// errorRootStatFormat is used when the root directory cannot be inspected.
	errorRootStatFormat = "inspecting root %s: %w"
	// errorRootNotDirectoryFormat is used when the root path is not a directory.
	errorRootNotDirectoryFormat = "root %s is not a directory"
)

// EventKind discriminates walker events.
type EventKind int

const (
	EventEnterDirectory EventKind = iota
	EventFile
	EventLink
	EventLeaveDirectory
)

// DirectoryEvent describes entering or leaving one directory. ReadError is
// non-empty when the directory could not be listed; its subtree is then empty
// and traversal continues with siblings.
type DirectoryEvent struct {
	Entry     types.DirectoryEntry
	ReadError string
}

// FileEvent describes one regular file in traversal order.
type FileEvent struct {
	Entry    types.DirectoryEntry
	MimeType string
	IsBinary bool
	Content  string
	// SkipReason is set when the file body was not captured: "binary",
	// "oversize", or "unreadable". Empty when Content holds the body or
	// content capture was not requested.
	SkipReason string
	Tokens     int
	Model      string
}

// LinkEvent describes a symbolic link that traversal does not descend into.
type LinkEvent struct {
	Entry  types.DirectoryEntry
	Target string
}

// Event is the union delivered to the walk handler.
type Event struct {
	Kind      EventKind
	Directory *DirectoryEvent
	File      *FileEvent
	Link      *LinkEvent
}

// Options configures one walk.
type Options struct {
	// Root is the absolute path of the directory to walk.
	Root string
	// ExcludePatterns are evaluated against root-relative paths with
	// utils.ShouldIgnoreByPath semantics.
	ExcludePatterns []string
	// IncludeContent captures file bodies on FileEvents.
	IncludeContent bool
	// MaxFileSize skips bodies of larger files when positive.
	MaxFileSize int64
	// TokenCounter, when non-nil, adds token counts for text files.
	TokenCounter tokenizer.Counter
	TokenModel   string
	// Warn receives recoverable per-entry diagnostics.
	Warn func(message string)
}

type walker struct {
	options Options
	handler func(Event) error
	// resolvedStack holds the symlink-resolved path of every directory on the
	// current traversal path, used to refuse descending into ancestors.
	resolvedStack []string
}

// Walk traverses options.Root depth-first. Entries at each level are sorted
// case-insensitively by name, directories and files merged in a single list,
// so repeated walks of an unchanged tree produce identical event sequences.
func Walk(options Options, handler func(Event) error) error {
	if handler == nil {
		return fmt.Errorf("scan: walk handler is nil")
	}

	walkState := &walker{options: options, handler: handler}
	if walkState.options.Warn == nil {
		walkState.options.Warn = func(string) {}
	}

	rootInfo, rootStatError := os.Stat(options.Root)
	if rootStatError != nil {
		return fmt.Errorf(errorRootStatFormat, options.Root, rootStatError)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf(errorRootNotDirectoryFormat, options.Root)
	}

	resolvedRoot, resolveError := filepath.EvalSymlinks(options.Root)
	if resolveError != nil {
		resolvedRoot = options.Root
	}
	walkState.resolvedStack = append(walkState.resolvedStack, resolvedRoot)

	return walkState.walkDirectory(options.Root, 0)
}

// sortEntries orders directory entries case-insensitively ascending by name,
// breaking ties case-sensitively. Directories and files share one ordering.
func sortEntries(entries []os.DirEntry) {
	sort.Slice(entries, func(firstIndex, secondIndex int) bool {
		firstLower := strings.ToLower(entries[firstIndex].Name())
		secondLower := strings.ToLower(entries[secondIndex].Name())
		if firstLower == secondLower {
			return entries[firstIndex].Name() < entries[secondIndex].Name()
		}
		return firstLower < secondLower
	})
}

func (walkState *walker) walkDirectory(directoryPath string, depth int) error {
	directoryInfo, statError := os.Stat(directoryPath)
	directoryEntry := types.DirectoryEntry{
		AbsolutePath: directoryPath,
		RelativePath: utils.RelativePathOrSelf(directoryPath, walkState.options.Root),
		Name:         filepath.Base(directoryPath),
		Kind:         types.EntryKindDirectory,
		Depth:        depth,
	}
	if statError == nil {
		directoryEntry.LastModified = utils.FormatTimestamp(directoryInfo.ModTime())
	}

	childEntries, readError := os.ReadDir(directoryPath)
	enterEvent := DirectoryEvent{Entry: directoryEntry}
	if readError != nil {
		enterEvent.ReadError = readError.Error()
	}
	if handlerError := walkState.handler(Event{Kind: EventEnterDirectory, Directory: &enterEvent}); handlerError != nil {
		return handlerError
	}

	if readError == nil {
		sortEntries(childEntries)
		for _, childEntry := range childEntries {
			childPath := filepath.Join(directoryPath, childEntry.Name())
			relativeChildPath := utils.RelativePathOrSelf(childPath, walkState.options.Root)
			if utils.ShouldIgnoreByPath(relativeChildPath, walkState.options.ExcludePatterns) {
				continue
			}
			if walkError := walkState.walkChild(childEntry, childPath, relativeChildPath, depth+1); walkError != nil {
				return walkError
			}
		}
	}

	leaveEvent := enterEvent
	return walkState.handler(Event{Kind: EventLeaveDirectory, Directory: &leaveEvent})
}

func (walkState *walker) walkChild(childEntry os.DirEntry, childPath string, relativeChildPath string, depth int) error {
	entryInfo, infoError := childEntry.Info()
	if infoError != nil {
		walkState.options.Warn(fmt.Sprintf(warningStatEntryFormat, childPath, infoError))
		return nil
	}

	if entryInfo.Mode()&os.ModeSymlink != 0 {
		return walkState.walkSymlink(childPath, relativeChildPath, entryInfo, depth)
	}

	if childEntry.IsDir() {
		parentResolvedPath := walkState.resolvedStack[len(walkState.resolvedStack)-1]
		walkState.resolvedStack = append(walkState.resolvedStack, filepath.Join(parentResolvedPath, childEntry.Name()))
		walkError := walkState.walkDirectory(childPath, depth)
		walkState.resolvedStack = walkState.resolvedStack[:len(walkState.resolvedStack)-1]
		return walkError
	}

	return walkState.emitFile(childPath, relativeChildPath, entryInfo, depth)
}

// walkSymlink records links without expanding them. A link whose resolved
// target is a directory already on the current traversal path would loop, so
// it is always reported as a link; link targets pointing elsewhere at a
// directory are expanded once, and links to files are read through.
func (walkState *walker) walkSymlink(childPath string, relativeChildPath string, entryInfo os.FileInfo, depth int) error {
	linkTarget, readlinkError := os.Readlink(childPath)
	if readlinkError != nil {
		walkState.options.Warn(fmt.Sprintf(warningResolveLinkFormat, childPath, readlinkError))
		linkTarget = ""
	}

	resolvedTarget, resolveError := filepath.EvalSymlinks(childPath)
	if resolveError != nil {
		return walkState.emitLink(childPath, relativeChildPath, entryInfo, depth, linkTarget)
	}

	targetInfo, targetStatError := os.Stat(resolvedTarget)
	if targetStatError != nil {
		return walkState.emitLink(childPath, relativeChildPath, entryInfo, depth, linkTarget)
	}

	if !targetInfo.IsDir() {
		return walkState.emitFile(childPath, relativeChildPath, targetInfo, depth)
	}

	for _, ancestorPath := range walkState.resolvedStack {
		if resolvedTarget == ancestorPath || strings.HasPrefix(ancestorPath+string(filepath.Separator), resolvedTarget+string(filepath.Separator)) {
			return walkState.emitLink(childPath, relativeChildPath, entryInfo, depth, linkTarget)
		}
	}

	walkState.resolvedStack = append(walkState.resolvedStack, resolvedTarget)
	walkError := walkState.walkDirectory(childPath, depth)
	walkState.resolvedStack = walkState.resolvedStack[:len(walkState.resolvedStack)-1]
	return walkError
}

func (walkState *walker) emitLink(childPath string, relativeChildPath string, entryInfo os.FileInfo, depth int, linkTarget string) error {
	linkEvent := LinkEvent{
		Entry: types.DirectoryEntry{
			AbsolutePath: childPath,
			RelativePath: relativeChildPath,
			Name:         filepath.Base(childPath),
			Kind:         types.EntryKindLink,
			Depth:        depth,
			LastModified: utils.FormatTimestamp(entryInfo.ModTime()),
		},
		Target: linkTarget,
	}
	return walkState.handler(Event{Kind: EventLink, Link: &linkEvent})
}

func (walkState *walker) emitFile(childPath string, relativeChildPath string, entryInfo os.FileInfo, depth int) error {
	inspection := inspectFile(childPath, entryInfo, fileInspectionConfig{
		IncludeContent: walkState.options.IncludeContent,
		MaxFileSize:    walkState.options.MaxFileSize,
		TokenCounter:   walkState.options.TokenCounter,
		TokenModel:     walkState.options.TokenModel,
		Warn:           walkState.options.Warn,
	})

	entryKind := types.EntryKindFile
	if inspection.IsBinary {
		entryKind = types.EntryKindBinary
	}

	fileEvent := FileEvent{
		Entry: types.DirectoryEntry{
			AbsolutePath: childPath,
			RelativePath: relativeChildPath,
			Name:         filepath.Base(childPath),
			Kind:         entryKind,
			Depth:        depth,
			SizeBytes:    entryInfo.Size(),
			LastModified: utils.FormatTimestamp(entryInfo.ModTime()),
		},
		MimeType:   inspection.MimeType,
		IsBinary:   inspection.IsBinary,
		Content:    inspection.Content,
		SkipReason: inspection.SkipReason,
		Tokens:     inspection.Tokens,
		Model:      inspection.Model,
	}
	return walkState.handler(Event{Kind: EventFile, File: &fileEvent})
}
