// Package stream exposes the scan pipeline as a channel of typed events so
// that consumers (the export assembler, alternative shells) can observe
// traversal progress without waiting for the full document.
package stream

import (
	"time"

	"github.com/aaronvstory/Project-Exporter/internal/types"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindStart        EventKind = "start"
	EventKindDirectory    EventKind = "directory"
	EventKindFile         EventKind = "file"
	EventKindLink         EventKind = "link"
	EventKindContentChunk EventKind = "content_chunk"
	EventKindSummary      EventKind = "summary"
	EventKindWarning      EventKind = "warning"
	EventKindError        EventKind = "error"
	EventKindTree         EventKind = "tree"
	EventKindDone         EventKind = "done"
)

type DirectoryPhase string

const (
	DirectoryEnter DirectoryPhase = "enter"
	DirectoryLeave DirectoryPhase = "leave"
)

// Event is the envelope for every message on the stream channel.
type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	Command   string    `json:"command,omitempty"`
	Path      string    `json:"path,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	Directory *DirectoryEvent `json:"directory,omitempty"`
	File      *FileEvent      `json:"file,omitempty"`
	Link      *LinkEvent      `json:"link,omitempty"`
	Chunk     *ChunkEvent     `json:"chunk,omitempty"`
	Summary   *SummaryEvent   `json:"summary,omitempty"`
	Message   *LogEvent       `json:"message,omitempty"`
	Err       *ErrorEvent     `json:"error,omitempty"`
	Tree      *types.TreeNode `json:"tree,omitempty"`
}

type DirectoryEvent struct {
	Phase        DirectoryPhase `json:"phase"`
	Path         string         `json:"path"`
	Name         string         `json:"name,omitempty"`
	Depth        int            `json:"depth,omitempty"`
	LastModified string         `json:"lastModified,omitempty"`
	ReadError    string         `json:"readError,omitempty"`
	Summary      *SummaryEvent  `json:"summary,omitempty"`
}

type FileEvent struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Depth        int    `json:"depth,omitempty"`
	SizeBytes    int64  `json:"sizeBytes,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	IsBinary     bool   `json:"isBinary"`
	SkipReason   string `json:"skipReason,omitempty"`
	Tokens       int    `json:"tokens,omitempty"`
	Model        string `json:"model,omitempty"`
	Kind         string `json:"kind"`
}

type LinkEvent struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Depth  int    `json:"depth,omitempty"`
	Target string `json:"target,omitempty"`
}

type ChunkEvent struct {
	Path    string `json:"path"`
	Index   int    `json:"index"`
	Data    string `json:"data,omitempty"`
	IsFinal bool   `json:"isFinal"`
}

type SummaryEvent struct {
	Files   int    `json:"files"`
	Skipped int    `json:"skipped,omitempty"`
	Bytes   int64  `json:"bytes"`
	Tokens  int    `json:"tokens,omitempty"`
	Model   string `json:"model,omitempty"`
}

type LogEvent struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
