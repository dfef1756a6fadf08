package output_test

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aaronvstory/Project-Exporter/internal/output"
	"github.com/aaronvstory/Project-Exporter/internal/scan"
	"github.com/aaronvstory/Project-Exporter/internal/types"
)

// sampleTree builds the tree used by the rendering tests:
//
//	project/
//	├── a.txt
//	└── sub/
//	    ├── b.py
//	    └── link -> ../target
func sampleTree() *types.TreeNode {
	return &types.TreeNode{
		Name: "project",
		Kind: types.EntryKindDirectory,
		Children: []*types.TreeNode{
			{Name: "a.txt", RelativePath: "a.txt", Kind: types.EntryKindFile},
			{
				Name:         "sub",
				RelativePath: "sub",
				Kind:         types.EntryKindDirectory,
				Children: []*types.TreeNode{
					{Name: "b.py", RelativePath: "sub/b.py", Kind: types.EntryKindFile},
					{Name: "link", RelativePath: "sub/link", Kind: types.EntryKindLink, LinkTarget: "../target"},
				},
			},
		},
	}
}

// treeRenderingExpected defines the expected glyph rendering of sampleTree.
const treeRenderingExpected = "project/\n" +
	"├── a.txt\n" +
	"└── sub/\n" +
	"    ├── b.py\n" +
	"    └── link -> ../target\n"

// TestRenderTree verifies glyph rendering, directory suffixes, and link targets.
func TestRenderTree(testingInstance *testing.T) {
	actual := output.RenderTree(sampleTree())
	if actual != treeRenderingExpected {
		testingInstance.Errorf("unexpected rendering:\n%s\nexpected:\n%s", actual, treeRenderingExpected)
	}
}

// TestRenderTreeMarksUnreadableDirectories verifies the inline error marker.
func TestRenderTreeMarksUnreadableDirectories(testingInstance *testing.T) {
	tree := &types.TreeNode{
		Name: "project",
		Kind: types.EntryKindDirectory,
		Children: []*types.TreeNode{
			{Name: "locked", Kind: types.EntryKindDirectory, ReadError: "permission denied"},
		},
	}
	expected := "project/\n└── locked/ [error: permission denied]\n"
	actual := output.RenderTree(tree)
	if actual != expected {
		testingInstance.Errorf("unexpected rendering %q, expected %q", actual, expected)
	}
}

// TestRenderTreeIsDeterministic verifies repeated renderings are byte-identical.
func TestRenderTreeIsDeterministic(testingInstance *testing.T) {
	first := output.RenderTree(sampleTree())
	second := output.RenderTree(sampleTree())
	if first != second {
		testingInstance.Error("renderings differ between runs")
	}
}

func sampleFiles() []scan.FileEvent {
	return []scan.FileEvent{
		{
			Entry:   types.DirectoryEntry{RelativePath: "a.txt", Kind: types.EntryKindFile},
			Content: "hello\n",
		},
		{
			Entry:      types.DirectoryEntry{RelativePath: "sub/image.png", Kind: types.EntryKindBinary},
			SkipReason: scan.SkipReasonBinary,
		},
		{
			Entry:   types.DirectoryEntry{RelativePath: "sub/b.py", Kind: types.EntryKindFile},
			Content: "print()",
		},
	}
}

// TestBuildTextDocument verifies the delimiter-tag content section.
func TestBuildTextDocument(testingInstance *testing.T) {
	document := output.BuildTextDocument(output.DocumentInput{
		ProjectName: "project",
		Tree:        sampleTree(),
		Files:       sampleFiles(),
	})

	if !strings.HasPrefix(document, treeRenderingExpected) {
		testingInstance.Error("document does not start with the rendered tree")
	}
	if !strings.Contains(document, "<file path=\"a.txt\">\nhello\n</file>\n") {
		testingInstance.Errorf("missing delimited content for a.txt:\n%s", document)
	}
	if !strings.Contains(document, "<file path=\"sub/image.png\" skipped=\"binary\" />") {
		testingInstance.Errorf("missing skip note for binary file:\n%s", document)
	}
	if !strings.Contains(document, "<file path=\"sub/b.py\">\nprint()\n</file>\n") {
		testingInstance.Errorf("missing delimited content for sub/b.py:\n%s", document)
	}

	treeIndex := strings.Index(document, "├── a.txt")
	contentIndex := strings.Index(document, "<file path=\"a.txt\">")
	if treeIndex < 0 || contentIndex < 0 || contentIndex < treeIndex {
		testingInstance.Error("tree section does not precede content section")
	}
}

// TestBuildTextDocumentStructureOnly verifies no content section is produced.
func TestBuildTextDocumentStructureOnly(testingInstance *testing.T) {
	document := output.BuildTextDocument(output.DocumentInput{
		ProjectName:   "project",
		Tree:          sampleTree(),
		Files:         sampleFiles(),
		StructureOnly: true,
	})
	if document != treeRenderingExpected {
		testingInstance.Errorf("structure-only document %q, expected tree only", document)
	}
}

// TestBuildMarkdownDocument verifies headers and fenced sections.
func TestBuildMarkdownDocument(testingInstance *testing.T) {
	document := output.BuildMarkdownDocument(output.DocumentInput{
		ProjectName: "project",
		Tree:        sampleTree(),
		Files:       sampleFiles(),
		LLMOptimize: true,
	})

	if !strings.HasPrefix(document, "# Project Structure: project\n") {
		testingInstance.Error("missing markdown header")
	}
	if !strings.Contains(document, "## Directory Tree\n\n```\n"+treeRenderingExpected+"```\n") {
		testingInstance.Error("missing fenced directory tree")
	}
	if !strings.Contains(document, "### File: `sub/b.py`\nType: source_code\n") {
		testingInstance.Errorf("missing LLM type line:\n%s", document)
	}
	if !strings.Contains(document, "_Content skipped: binary._") {
		testingInstance.Error("missing markdown skip note")
	}
}

// TestBuildJSONDocument verifies the structured document shape.
func TestBuildJSONDocument(testingInstance *testing.T) {
	document, buildError := output.BuildJSONDocument(output.StructuredInput{
		DocumentInput: output.DocumentInput{
			ProjectName: "project",
			Tree:        sampleTree(),
			Files:       sampleFiles(),
		},
	})
	if buildError != nil {
		testingInstance.Fatalf("building JSON document: %v", buildError)
	}
	for _, expectedFragment := range []string{
		"\"projectName\": \"project\"",
		"\"path\": \"a.txt\"",
		"\"skipped\": \"binary\"",
	} {
		if !strings.Contains(document, expectedFragment) {
			testingInstance.Errorf("JSON document missing %q:\n%s", expectedFragment, document)
		}
	}
}

// TestBuildJSONDocumentPreviewStaysValidUTF8 verifies preview truncation
// never splits a multibyte rune, even when the cut lands mid-rune.
func TestBuildJSONDocumentPreviewStaysValidUTF8(testingInstance *testing.T) {
	content := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 16)
	document, buildError := output.BuildJSONDocument(output.StructuredInput{
		DocumentInput: output.DocumentInput{
			ProjectName: "project",
			Tree:        sampleTree(),
			LLMOptimize: true,
			Files: []scan.FileEvent{
				{
					Entry:   types.DirectoryEntry{RelativePath: "wide.txt", Name: "wide.txt", Kind: types.EntryKindFile},
					Content: content,
				},
			},
		},
	})
	if buildError != nil {
		testingInstance.Fatalf("building JSON document: %v", buildError)
	}

	var decoded types.ExportDocument
	if decodeError := json.Unmarshal([]byte(document), &decoded); decodeError != nil {
		testingInstance.Fatalf("decoding JSON document: %v", decodeError)
	}
	if len(decoded.Files) != 1 {
		testingInstance.Fatalf("file records = %d, expected 1", len(decoded.Files))
	}
	expectedPreview := strings.Repeat("a", 199) + "..."
	if decoded.Files[0].Preview != expectedPreview {
		testingInstance.Errorf("preview = %q, expected %q", decoded.Files[0].Preview, expectedPreview)
	}
	if !utf8.ValidString(decoded.Files[0].Preview) {
		testingInstance.Error("preview is not valid UTF-8")
	}
}

// TestSemanticType verifies file classification by extension.
func TestSemanticType(testingInstance *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{path: "main.go", expected: output.SemanticSourceCode},
		{path: "README.md", expected: output.SemanticDocumentation},
		{path: "config.yaml", expected: output.SemanticData},
		{path: "logo.PNG", expected: output.SemanticImage},
		{path: "index.html", expected: output.SemanticWeb},
		{path: "app.ini", expected: output.SemanticConfiguration},
		{path: "Makefile", expected: output.SemanticUnknown},
	}
	for _, testCase := range testCases {
		actual := output.SemanticType(testCase.path)
		if actual != testCase.expected {
			testingInstance.Errorf("SemanticType(%q) = %q, expected %q", testCase.path, actual, testCase.expected)
		}
	}
}

// TestFormatSummaryLine verifies the run summary formatting.
func TestFormatSummaryLine(testingInstance *testing.T) {
	summary := &types.OutputSummary{TotalFiles: 2, TotalSize: "1.5kb", TotalTokens: 42, Model: "gpt-4o"}
	expected := "Summary: 2 files, 1.5kb, 42 tokens (model: gpt-4o)"
	actual := output.FormatSummaryLine(summary)
	if actual != expected {
		testingInstance.Errorf("summary line %q, expected %q", actual, expected)
	}

	singular := output.FormatSummaryLine(&types.OutputSummary{TotalFiles: 1, TotalSize: "3b"})
	if singular != "Summary: 1 file, 3b" {
		testingInstance.Errorf("singular summary line %q", singular)
	}
}
