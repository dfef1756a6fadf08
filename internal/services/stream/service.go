package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aaronvstory/Project-Exporter/internal/scan"
	"github.com/aaronvstory/Project-Exporter/internal/tokenizer"
	"github.com/aaronvstory/Project-Exporter/internal/types"
)

// ScanOptions configures one streamed scan of a directory tree.
type ScanOptions struct {
	Root            string
	ExcludePatterns []string
	IncludeContent  bool
	MaxFileSize     int64
	TokenCounter    tokenizer.Counter
	TokenModel      string
}

type emitter struct {
	ctx     context.Context
	out     chan<- Event
	command string
}

func newEmitter(ctx context.Context, out chan<- Event, command string) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out, command: command}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	event.Version = SchemaVersion
	if event.Command == "" {
		event.Command = e.command
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(path, message string) {
	trimmed := strings.TrimRight(message, "\n")
	if trimmed == "" {
		return
	}
	_ = e.send(Event{
		Kind:    EventKindWarning,
		Path:    path,
		Message: &LogEvent{Level: "warning", Message: trimmed},
	})
}

type summaryTracker struct {
	files   int
	skipped int
	bytes   int64
	tokens  int
	model   string
}

func (tracker *summaryTracker) addFile(size int64, tokens int, model string, wasSkipped bool) {
	if wasSkipped {
		tracker.skipped++
		return
	}
	tracker.files++
	tracker.bytes += size
	tracker.tokens += tokens
	if tracker.model == "" && model != "" && tokens > 0 {
		tracker.model = model
	}
}

func (tracker *summaryTracker) summary() *SummaryEvent {
	return &SummaryEvent{
		Files:   tracker.files,
		Skipped: tracker.skipped,
		Bytes:   tracker.bytes,
		Tokens:  tracker.tokens,
		Model:   tracker.model,
	}
}

// StreamScan walks opts.Root and emits the traversal as events on out. The
// final Tree event carries the fully assembled node tree; the Summary event
// carries aggregate counts. Emission order mirrors traversal order, so
// consumers can render progressively.
func StreamScan(ctx context.Context, opts ScanOptions, out chan<- Event) error {
	if opts.Root == "" {
		return fmt.Errorf("stream: scan root path is empty")
	}

	scanEmitter := newEmitter(ctx, out, types.CommandExport)
	if sendError := scanEmitter.send(Event{Kind: EventKindStart, Path: opts.Root}); sendError != nil {
		return sendError
	}

	tracker := &summaryTracker{}
	var rootNode *types.TreeNode
	var stack []*types.TreeNode

	walkOptions := scan.Options{
		Root:            opts.Root,
		ExcludePatterns: opts.ExcludePatterns,
		IncludeContent:  opts.IncludeContent,
		MaxFileSize:     opts.MaxFileSize,
		TokenCounter:    opts.TokenCounter,
		TokenModel:      opts.TokenModel,
		Warn: func(message string) {
			scanEmitter.warn(opts.Root, message)
		},
	}

	handler := func(walkEvent scan.Event) error {
		switch walkEvent.Kind {
		case scan.EventEnterDirectory:
			directory := walkEvent.Directory
			if sendError := scanEmitter.send(Event{
				Kind: EventKindDirectory,
				Path: directory.Entry.AbsolutePath,
				Directory: &DirectoryEvent{
					Phase:        DirectoryEnter,
					Path:         directory.Entry.RelativePath,
					Name:         directory.Entry.Name,
					Depth:        directory.Entry.Depth,
					LastModified: directory.Entry.LastModified,
					ReadError:    directory.ReadError,
				},
			}); sendError != nil {
				return sendError
			}

			directoryNode := &types.TreeNode{
				Name:         directory.Entry.Name,
				RelativePath: directory.Entry.RelativePath,
				Kind:         types.EntryKindDirectory,
				Depth:        directory.Entry.Depth,
				LastModified: directory.Entry.LastModified,
				ReadError:    directory.ReadError,
			}
			if len(stack) == 0 {
				rootNode = directoryNode
			} else {
				parentNode := stack[len(stack)-1]
				parentNode.Children = append(parentNode.Children, directoryNode)
			}
			stack = append(stack, directoryNode)
			return nil

		case scan.EventFile:
			file := walkEvent.File
			tracker.addFile(file.Entry.SizeBytes, file.Tokens, file.Model, file.SkipReason != "")
			if sendError := scanEmitter.send(Event{
				Kind: EventKindFile,
				Path: file.Entry.AbsolutePath,
				File: &FileEvent{
					Path:         file.Entry.RelativePath,
					Name:         file.Entry.Name,
					Depth:        file.Entry.Depth,
					SizeBytes:    file.Entry.SizeBytes,
					LastModified: file.Entry.LastModified,
					MimeType:     file.MimeType,
					IsBinary:     file.IsBinary,
					SkipReason:   file.SkipReason,
					Tokens:       file.Tokens,
					Model:        file.Model,
					Kind:         file.Entry.Kind,
				},
			}); sendError != nil {
				return sendError
			}

			if opts.IncludeContent && file.SkipReason == "" {
				if sendError := scanEmitter.send(Event{
					Kind: EventKindContentChunk,
					Path: file.Entry.AbsolutePath,
					Chunk: &ChunkEvent{
						Path:    file.Entry.RelativePath,
						Index:   0,
						Data:    file.Content,
						IsFinal: true,
					},
				}); sendError != nil {
					return sendError
				}
			}

			fileNode := &types.TreeNode{
				Name:         file.Entry.Name,
				RelativePath: file.Entry.RelativePath,
				Kind:         file.Entry.Kind,
				Depth:        file.Entry.Depth,
				SizeBytes:    file.Entry.SizeBytes,
				LastModified: file.Entry.LastModified,
				MimeType:     file.MimeType,
				Tokens:       file.Tokens,
			}
			if len(stack) == 0 {
				return fmt.Errorf("stream: file %s outside any directory", file.Entry.RelativePath)
			}
			parentNode := stack[len(stack)-1]
			parentNode.Children = append(parentNode.Children, fileNode)
			return nil

		case scan.EventLink:
			link := walkEvent.Link
			if sendError := scanEmitter.send(Event{
				Kind: EventKindLink,
				Path: link.Entry.AbsolutePath,
				Link: &LinkEvent{
					Path:   link.Entry.RelativePath,
					Name:   link.Entry.Name,
					Depth:  link.Entry.Depth,
					Target: link.Target,
				},
			}); sendError != nil {
				return sendError
			}

			linkNode := &types.TreeNode{
				Name:         link.Entry.Name,
				RelativePath: link.Entry.RelativePath,
				Kind:         types.EntryKindLink,
				Depth:        link.Entry.Depth,
				LastModified: link.Entry.LastModified,
				LinkTarget:   link.Target,
			}
			if len(stack) == 0 {
				return fmt.Errorf("stream: link %s outside any directory", link.Entry.RelativePath)
			}
			parentNode := stack[len(stack)-1]
			parentNode.Children = append(parentNode.Children, linkNode)
			return nil

		case scan.EventLeaveDirectory:
			directory := walkEvent.Directory
			if sendError := scanEmitter.send(Event{
				Kind: EventKindDirectory,
				Path: directory.Entry.AbsolutePath,
				Directory: &DirectoryEvent{
					Phase:        DirectoryLeave,
					Path:         directory.Entry.RelativePath,
					Name:         directory.Entry.Name,
					Depth:        directory.Entry.Depth,
					LastModified: directory.Entry.LastModified,
				},
			}); sendError != nil {
				return sendError
			}

			if len(stack) == 0 {
				return fmt.Errorf("stream: directory stack underflow at %s", directory.Entry.RelativePath)
			}
			leavingNode := stack[len(stack)-1]
			if leavingNode.RelativePath != directory.Entry.RelativePath {
				return fmt.Errorf("stream: directory stack mismatch for %s", directory.Entry.RelativePath)
			}
			stack = stack[:len(stack)-1]
			return nil

		default:
			return nil
		}
	}

	if walkError := scan.Walk(walkOptions, handler); walkError != nil {
		scanEmitter.warn(opts.Root, walkError.Error())
		_ = scanEmitter.send(Event{Kind: EventKindError, Path: opts.Root, Err: &ErrorEvent{Message: walkError.Error()}})
		return walkError
	}

	if rootNode != nil {
		if sendError := scanEmitter.send(Event{Kind: EventKindTree, Path: opts.Root, Tree: rootNode}); sendError != nil {
			return sendError
		}
	}

	if sendError := scanEmitter.send(Event{Kind: EventKindSummary, Path: opts.Root, Summary: tracker.summary()}); sendError != nil {
		return sendError
	}
	return scanEmitter.send(Event{Kind: EventKindDone, Path: opts.Root})
}
