// Package export implements the export controller: it validates the root,
// assembles the exclusion set, drives the scan stream, renders the selected
// format, and delivers the document to its destination.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aaronvstory/Project-Exporter/internal/output"
	"github.com/aaronvstory/Project-Exporter/internal/scan"
	"github.com/aaronvstory/Project-Exporter/internal/services/clipboard"
	"github.com/aaronvstory/Project-Exporter/internal/services/stream"
	"github.com/aaronvstory/Project-Exporter/internal/tokenizer"
	"github.com/aaronvstory/Project-Exporter/internal/types"
)

const (
	exportCompletedMessageFormat = "Export completed: %s"
	exportStdoutMessage          = "Export written to standard output"

	rootMissingMessageFormat      = "root directory %s does not exist"
	rootNotDirectoryMessageFormat = "root path %s is not a directory"
	rootAccessMessageFormat       = "unable to access root %s: %v"
	scanFailedMessageFormat       = "scan of %s failed: %v"
	renderFailedMessageFormat     = "rendering %s output failed: %v"
	writeFailedMessageFormat      = "writing output file %s failed: %v"
	clipboardFailedMessageFormat  = "copying output to clipboard failed: %v"
	tokenizerFailedMessageFormat  = "initializing tokenizer for model %s failed: %v"

	outputFileMode = 0o644
)

// Runner executes export runs. The zero value is usable; Logger and Clipboard
// are optional collaborators.
type Runner struct {
	Logger    *zap.Logger
	Clipboard clipboard.Copier
	// Now supplies the export timestamp for structured formats. Defaults to
	// time.Now.
	Now func() time.Time
}

func (runner *Runner) logger() *zap.Logger {
	if runner.Logger != nil {
		return runner.Logger
	}
	return zap.NewNop()
}

func (runner *Runner) now() time.Time {
	if runner.Now != nil {
		return runner.Now()
	}
	return time.Now()
}

func failedResult(message string) types.ExportResult {
	return types.ExportResult{Success: false, Message: message}
}

// Run performs one export of rootPath and returns the outcome. It never
// panics; every failure surfaces in the returned ExportResult. When the run
// aborts no output file is left behind.
func (runner *Runner) Run(rootPath string, options types.ExportOptions) types.ExportResult {
	absoluteRootPath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return failedResult(fmt.Sprintf(rootAccessMessageFormat, rootPath, absoluteError))
	}

	rootInfo, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		if os.IsNotExist(rootStatError) {
			return failedResult(fmt.Sprintf(rootMissingMessageFormat, absoluteRootPath))
		}
		return failedResult(fmt.Sprintf(rootAccessMessageFormat, absoluteRootPath, rootStatError))
	}
	if !rootInfo.IsDir() {
		return failedResult(fmt.Sprintf(rootNotDirectoryMessageFormat, absoluteRootPath))
	}

	validatedRoot := types.ValidatedRoot{
		AbsolutePath: absoluteRootPath,
		Name:         filepath.Base(absoluteRootPath),
	}

	// An explicit output path is resolved against the working directory up
	// front so self-exclusion sees the same path the writer does.
	if options.OutputPath != "" {
		absoluteOutputPath, outputPathError := filepath.Abs(options.OutputPath)
		if outputPathError != nil {
			return failedResult(fmt.Sprintf(rootAccessMessageFormat, options.OutputPath, outputPathError))
		}
		options.OutputPath = absoluteOutputPath
	}

	outputPath := resolveOutputPath(validatedRoot, options)

	exclusionPatterns, patternError := collectExclusionPatterns(validatedRoot, options)
	if patternError != nil {
		return failedResult(patternError.Error())
	}

	var tokenCounter tokenizer.Counter
	tokenModel := options.TokenModel
	if options.TokensEnabled {
		counter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.TokenModel})
		if counterError != nil {
			return failedResult(fmt.Sprintf(tokenizerFailedMessageFormat, options.TokenModel, counterError))
		}
		tokenCounter = counter
		tokenModel = resolvedModel
	}

	scanOptions := stream.ScanOptions{
		Root:            validatedRoot.AbsolutePath,
		ExcludePatterns: exclusionPatterns,
		IncludeContent:  options.IncludeContents,
		MaxFileSize:     options.MaxFileSize,
		TokenCounter:    tokenCounter,
		TokenModel:      tokenModel,
	}

	assembled, scanError := runner.dispatchScan(context.Background(), scanOptions)
	if scanError != nil {
		return failedResult(fmt.Sprintf(scanFailedMessageFormat, validatedRoot.AbsolutePath, scanError))
	}

	document, renderError := runner.renderDocument(validatedRoot, options, assembled)
	if renderError != nil {
		return failedResult(fmt.Sprintf(renderFailedMessageFormat, options.Format, renderError))
	}

	result := types.ExportResult{
		Success:        true,
		FilesProcessed: assembled.processedCount(options.IncludeContents),
		FilesSkipped:   assembled.skippedCount(),
		TotalBytes:     assembled.totalBytes(),
		TotalTokens:    assembled.totalTokens(),
	}

	if options.ToStdout {
		fmt.Print(document)
		result.Message = exportStdoutMessage
	} else {
		if writeError := writeDocumentAtomically(outputPath, document); writeError != nil {
			return failedResult(fmt.Sprintf(writeFailedMessageFormat, outputPath, writeError))
		}
		result.OutputPath = outputPath
		result.Message = fmt.Sprintf(exportCompletedMessageFormat, outputPath)
	}

	if options.ToClipboard && runner.Clipboard != nil {
		if copyError := runner.Clipboard.Copy(document); copyError != nil {
			runner.logger().Warn(fmt.Sprintf(clipboardFailedMessageFormat, copyError))
		}
	}

	return result
}

// dispatchScan runs the stream producer and the assembling consumer as a
// goroutine pair and returns the assembled scan once both finish.
func (runner *Runner) dispatchScan(ctx context.Context, scanOptions stream.ScanOptions) (*assembledScan, error) {
	eventChannel := make(chan stream.Event, 64)
	assembled := newAssembledScan()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(eventChannel)
		return stream.StreamScan(groupCtx, scanOptions, eventChannel)
	})
	group.Go(func() error {
		for streamEvent := range eventChannel {
			assembled.consume(streamEvent, runner.logger())
		}
		return nil
	})

	if groupError := group.Wait(); groupError != nil {
		return nil, groupError
	}
	return assembled, nil
}

func (runner *Runner) renderDocument(validatedRoot types.ValidatedRoot, options types.ExportOptions, assembled *assembledScan) (string, error) {
	documentInput := output.DocumentInput{
		ProjectName:   validatedRoot.Name,
		Tree:          assembled.tree,
		Files:         assembled.files,
		StructureOnly: !options.IncludeContents,
		LLMOptimize:   options.LLMOptimize,
	}

	switch options.Format {
	case types.FormatMarkdown:
		return output.BuildMarkdownDocument(documentInput), nil
	case types.FormatJSON:
		return output.BuildJSONDocument(output.StructuredInput{
			DocumentInput: documentInput,
			ExportDate:    runner.now(),
			TokenModel:    options.TokenModel,
		})
	case types.FormatYAML:
		return output.BuildYAMLDocument(output.StructuredInput{
			DocumentInput: documentInput,
			ExportDate:    runner.now(),
			TokenModel:    options.TokenModel,
		})
	default:
		return output.BuildTextDocument(documentInput), nil
	}
}

// writeDocumentAtomically writes to a sibling temporary file and renames it
// into place so an interrupted run never leaves a partial export behind.
func writeDocumentAtomically(outputPath string, document string) error {
	outputDirectory := filepath.Dir(outputPath)
	temporaryFile, createError := os.CreateTemp(outputDirectory, filepath.Base(outputPath)+".tmp-*")
	if createError != nil {
		return createError
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.WriteString(document); writeError != nil {
		temporaryFile.Close()
		os.Remove(temporaryPath)
		return writeError
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		os.Remove(temporaryPath)
		return closeError
	}
	if chmodError := os.Chmod(temporaryPath, outputFileMode); chmodError != nil {
		os.Remove(temporaryPath)
		return chmodError
	}
	if renameError := os.Rename(temporaryPath, outputPath); renameError != nil {
		os.Remove(temporaryPath)
		return renameError
	}
	return nil
}

// assembledScan collects the consumer side of one streamed scan.
type assembledScan struct {
	tree    *types.TreeNode
	files   []scan.FileEvent
	summary stream.SummaryEvent
}

func newAssembledScan() *assembledScan {
	return &assembledScan{}
}

func (assembled *assembledScan) consume(streamEvent stream.Event, logger *zap.Logger) {
	switch streamEvent.Kind {
	case stream.EventKindFile:
		fileEvent := streamEvent.File
		assembled.files = append(assembled.files, scan.FileEvent{
			Entry: types.DirectoryEntry{
				AbsolutePath: streamEvent.Path,
				RelativePath: fileEvent.Path,
				Name:         fileEvent.Name,
				Kind:         fileEvent.Kind,
				Depth:        fileEvent.Depth,
				SizeBytes:    fileEvent.SizeBytes,
				LastModified: fileEvent.LastModified,
			},
			MimeType:   fileEvent.MimeType,
			IsBinary:   fileEvent.IsBinary,
			SkipReason: fileEvent.SkipReason,
			Tokens:     fileEvent.Tokens,
			Model:      fileEvent.Model,
		})
	case stream.EventKindContentChunk:
		if len(assembled.files) > 0 {
			lastIndex := len(assembled.files) - 1
			if assembled.files[lastIndex].Entry.RelativePath == streamEvent.Chunk.Path {
				assembled.files[lastIndex].Content += streamEvent.Chunk.Data
			}
		}
	case stream.EventKindTree:
		assembled.tree = streamEvent.Tree
	case stream.EventKindSummary:
		if streamEvent.Summary != nil {
			assembled.summary = *streamEvent.Summary
		}
	case stream.EventKindWarning:
		if streamEvent.Message != nil {
			logger.Warn(streamEvent.Message.Message, zap.String("path", streamEvent.Path))
		}
	}
}

// processedCount is the number of files whose bodies the export embeds; in
// structure-only runs it is the number of files the tree lists.
func (assembled *assembledScan) processedCount(includeContents bool) int {
	if !includeContents {
		return len(assembled.files)
	}
	processed := 0
	for _, fileEvent := range assembled.files {
		if fileEvent.SkipReason == "" {
			processed++
		}
	}
	return processed
}

func (assembled *assembledScan) skippedCount() int {
	skipped := 0
	for _, fileEvent := range assembled.files {
		if fileEvent.SkipReason != "" {
			skipped++
		}
	}
	return skipped
}

func (assembled *assembledScan) totalBytes() int64 {
	return assembled.summary.Bytes
}

func (assembled *assembledScan) totalTokens() int {
	return assembled.summary.Tokens
}
