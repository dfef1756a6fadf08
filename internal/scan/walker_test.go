package scan_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aaronvstory/Project-Exporter/internal/scan"
	"github.com/aaronvstory/Project-Exporter/internal/types"
)

// writeTestFile creates a file with the provided content inside directory.
func writeTestFile(testingInstance *testing.T, directory string, name string, content string) string {
	testingInstance.Helper()
	filePath := filepath.Join(directory, name)
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingInstance.Fatalf("writing %s: %v", filePath, writeError)
	}
	return filePath
}

// collectRelativePaths walks root and records the relative path of every
// emitted entry in order.
func collectRelativePaths(testingInstance *testing.T, options scan.Options) []string {
	testingInstance.Helper()
	var relativePaths []string
	walkError := scan.Walk(options, func(walkEvent scan.Event) error {
		switch walkEvent.Kind {
		case scan.EventEnterDirectory:
			relativePaths = append(relativePaths, walkEvent.Directory.Entry.RelativePath)
		case scan.EventFile:
			relativePaths = append(relativePaths, walkEvent.File.Entry.RelativePath)
		case scan.EventLink:
			relativePaths = append(relativePaths, walkEvent.Link.Entry.RelativePath)
		}
		return nil
	})
	if walkError != nil {
		testingInstance.Fatalf("walking %s: %v", options.Root, walkError)
	}
	return relativePaths
}

// TestWalkOrdersEntriesCaseInsensitively verifies the single fixed ordering
// rule: per level, case-insensitive ascending, directories and files merged.
func TestWalkOrdersEntriesCaseInsensitively(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, rootDirectory, "Beta.txt", "beta")
	writeTestFile(testingInstance, rootDirectory, "alpha.txt", "alpha")
	if mkdirError := os.Mkdir(filepath.Join(rootDirectory, "Delta"), 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating directory: %v", mkdirError)
	}
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "Delta"), "z.txt", "z")
	writeTestFile(testingInstance, rootDirectory, "charlie.txt", "charlie")

	expectedOrder := []string{".", "alpha.txt", "Beta.txt", "charlie.txt", "Delta", "Delta/z.txt"}
	actualOrder := collectRelativePaths(testingInstance, scan.Options{Root: rootDirectory})
	if !reflect.DeepEqual(actualOrder, expectedOrder) {
		testingInstance.Errorf("traversal order %v, expected %v", actualOrder, expectedOrder)
	}
}

// TestWalkIsDeterministic verifies that repeated walks of an unchanged tree
// produce identical event sequences.
func TestWalkIsDeterministic(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, rootDirectory, "a.txt", "a")
	writeTestFile(testingInstance, rootDirectory, "b.txt", "b")
	if mkdirError := os.MkdirAll(filepath.Join(rootDirectory, "sub", "nested"), 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating directories: %v", mkdirError)
	}
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "sub"), "c.txt", "c")

	firstOrder := collectRelativePaths(testingInstance, scan.Options{Root: rootDirectory})
	secondOrder := collectRelativePaths(testingInstance, scan.Options{Root: rootDirectory})
	if !reflect.DeepEqual(firstOrder, secondOrder) {
		testingInstance.Errorf("walks differ: %v vs %v", firstOrder, secondOrder)
	}
}

// TestWalkExcludesMatchingSubtrees verifies an excluded directory disappears
// together with its entire subtree.
func TestWalkExcludesMatchingSubtrees(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, rootDirectory, "keep.txt", "keep")
	skippedDirectory := filepath.Join(rootDirectory, "node_modules")
	if mkdirError := os.Mkdir(skippedDirectory, 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating directory: %v", mkdirError)
	}
	writeTestFile(testingInstance, skippedDirectory, "dep.js", "dep")

	relativePaths := collectRelativePaths(testingInstance, scan.Options{
		Root:            rootDirectory,
		ExcludePatterns: []string{"node_modules"},
	})
	for _, relativePath := range relativePaths {
		if strings.Contains(relativePath, "node_modules") {
			testingInstance.Errorf("excluded path %q still present", relativePath)
		}
	}
	expectedOrder := []string{".", "keep.txt"}
	if !reflect.DeepEqual(relativePaths, expectedOrder) {
		testingInstance.Errorf("traversal order %v, expected %v", relativePaths, expectedOrder)
	}
}

// TestWalkReportsDepths verifies depth values follow nesting levels.
func TestWalkReportsDepths(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	if mkdirError := os.MkdirAll(filepath.Join(rootDirectory, "one", "two"), 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating directories: %v", mkdirError)
	}
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "one", "two"), "deep.txt", "deep")

	depthsByPath := map[string]int{}
	walkError := scan.Walk(scan.Options{Root: rootDirectory}, func(walkEvent scan.Event) error {
		switch walkEvent.Kind {
		case scan.EventEnterDirectory:
			depthsByPath[walkEvent.Directory.Entry.RelativePath] = walkEvent.Directory.Entry.Depth
		case scan.EventFile:
			depthsByPath[walkEvent.File.Entry.RelativePath] = walkEvent.File.Entry.Depth
		}
		return nil
	})
	if walkError != nil {
		testingInstance.Fatalf("walking: %v", walkError)
	}

	expectedDepths := map[string]int{".": 0, "one": 1, "one/two": 2, "one/two/deep.txt": 3}
	for relativePath, expectedDepth := range expectedDepths {
		if depthsByPath[relativePath] != expectedDepth {
			testingInstance.Errorf("depth of %q = %d, expected %d", relativePath, depthsByPath[relativePath], expectedDepth)
		}
	}
}

// TestWalkDoesNotFollowSymlinkCycles verifies a link pointing at an ancestor
// is reported as a link and never expanded.
func TestWalkDoesNotFollowSymlinkCycles(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	subDirectory := filepath.Join(rootDirectory, "sub")
	if mkdirError := os.Mkdir(subDirectory, 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating directory: %v", mkdirError)
	}
	linkPath := filepath.Join(subDirectory, "loop")
	if symlinkError := os.Symlink(rootDirectory, linkPath); symlinkError != nil {
		testingInstance.Skipf("symlinks unavailable: %v", symlinkError)
	}

	linkCount := 0
	entryCount := 0
	walkError := scan.Walk(scan.Options{Root: rootDirectory}, func(walkEvent scan.Event) error {
		switch walkEvent.Kind {
		case scan.EventLink:
			linkCount++
			if walkEvent.Link.Entry.RelativePath != "sub/loop" {
				testingInstance.Errorf("unexpected link path %q", walkEvent.Link.Entry.RelativePath)
			}
		case scan.EventEnterDirectory, scan.EventFile:
			entryCount++
			if entryCount > 16 {
				testingInstance.Fatal("traversal did not terminate")
			}
		}
		return nil
	})
	if walkError != nil {
		testingInstance.Fatalf("walking: %v", walkError)
	}
	if linkCount != 1 {
		testingInstance.Errorf("link events = %d, expected 1", linkCount)
	}
}

// TestWalkReadsThroughFileSymlinks verifies a link to a regular file is
// emitted as a file with the target's content.
func TestWalkReadsThroughFileSymlinks(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	targetPath := writeTestFile(testingInstance, rootDirectory, "target.txt", "linked content")
	linkPath := filepath.Join(rootDirectory, "alias.txt")
	if symlinkError := os.Symlink(targetPath, linkPath); symlinkError != nil {
		testingInstance.Skipf("symlinks unavailable: %v", symlinkError)
	}

	contentsByPath := map[string]string{}
	walkError := scan.Walk(scan.Options{Root: rootDirectory, IncludeContent: true}, func(walkEvent scan.Event) error {
		if walkEvent.Kind == scan.EventFile {
			contentsByPath[walkEvent.File.Entry.RelativePath] = walkEvent.File.Content
		}
		return nil
	})
	if walkError != nil {
		testingInstance.Fatalf("walking: %v", walkError)
	}
	if contentsByPath["alias.txt"] != "linked content" {
		testingInstance.Errorf("link content = %q, expected linked content", contentsByPath["alias.txt"])
	}
}

// TestWalkSkipsBinaryAndOversizeContent verifies skip reasons are recorded
// while traversal continues.
func TestWalkSkipsBinaryAndOversizeContent(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	binaryPath := filepath.Join(rootDirectory, "image.bin")
	if writeError := os.WriteFile(binaryPath, []byte{0x00, 0x01, 0xff, 0xfe}, 0o644); writeError != nil {
		testingInstance.Fatalf("writing binary file: %v", writeError)
	}
	writeTestFile(testingInstance, rootDirectory, "big.txt", strings.Repeat("x", 64))
	writeTestFile(testingInstance, rootDirectory, "small.txt", "small")

	skipReasons := map[string]string{}
	walkError := scan.Walk(scan.Options{
		Root:           rootDirectory,
		IncludeContent: true,
		MaxFileSize:    32,
	}, func(walkEvent scan.Event) error {
		if walkEvent.Kind == scan.EventFile {
			skipReasons[walkEvent.File.Entry.RelativePath] = walkEvent.File.SkipReason
		}
		return nil
	})
	if walkError != nil {
		testingInstance.Fatalf("walking: %v", walkError)
	}

	if skipReasons["image.bin"] != scan.SkipReasonBinary {
		testingInstance.Errorf("binary skip reason = %q", skipReasons["image.bin"])
	}
	if skipReasons["big.txt"] != scan.SkipReasonOversize {
		testingInstance.Errorf("oversize skip reason = %q", skipReasons["big.txt"])
	}
	if skipReasons["small.txt"] != "" {
		testingInstance.Errorf("small file unexpectedly skipped: %q", skipReasons["small.txt"])
	}
}

// TestWalkMarksUnlistableDirectories verifies a directory that cannot be
// listed is reported with its read error while the walk continues.
func TestWalkMarksUnlistableDirectories(testingInstance *testing.T) {
	if os.Geteuid() == 0 {
		testingInstance.Skip("permission restrictions do not apply to root")
	}
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, rootDirectory, "open.txt", "visible")
	lockedDirectory := filepath.Join(rootDirectory, "locked")
	if mkdirError := os.Mkdir(lockedDirectory, 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating directory: %v", mkdirError)
	}
	writeTestFile(testingInstance, lockedDirectory, "hidden.txt", "hidden")
	if chmodError := os.Chmod(lockedDirectory, 0o000); chmodError != nil {
		testingInstance.Fatalf("revoking permissions: %v", chmodError)
	}
	testingInstance.Cleanup(func() { os.Chmod(lockedDirectory, 0o755) })

	readErrorsByPath := map[string]string{}
	var visitedPaths []string
	walkError := scan.Walk(scan.Options{Root: rootDirectory}, func(walkEvent scan.Event) error {
		switch walkEvent.Kind {
		case scan.EventEnterDirectory:
			readErrorsByPath[walkEvent.Directory.Entry.RelativePath] = walkEvent.Directory.ReadError
			visitedPaths = append(visitedPaths, walkEvent.Directory.Entry.RelativePath)
		case scan.EventFile:
			visitedPaths = append(visitedPaths, walkEvent.File.Entry.RelativePath)
		}
		return nil
	})
	if walkError != nil {
		testingInstance.Fatalf("walking: %v", walkError)
	}

	if readErrorsByPath["locked"] == "" {
		testingInstance.Error("unlistable directory carries no read error")
	}
	expectedOrder := []string{".", "locked", "open.txt"}
	if !reflect.DeepEqual(visitedPaths, expectedOrder) {
		testingInstance.Errorf("traversal order %v, expected %v", visitedPaths, expectedOrder)
	}
}

// TestWalkRejectsMissingRoot verifies a missing root aborts the walk.
func TestWalkRejectsMissingRoot(testingInstance *testing.T) {
	missingRoot := filepath.Join(testingInstance.TempDir(), "absent")
	walkError := scan.Walk(scan.Options{Root: missingRoot}, func(scan.Event) error { return nil })
	if walkError == nil {
		testingInstance.Fatal("expected error for missing root")
	}
	if !strings.Contains(walkError.Error(), missingRoot) {
		testingInstance.Errorf("error %q does not name the root path", walkError.Error())
	}
}

// TestBuildTreeAssemblesNodesAndEntries verifies the one-pass tree assembly.
func TestBuildTreeAssemblesNodesAndEntries(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, rootDirectory, "a.txt", "a")
	if mkdirError := os.Mkdir(filepath.Join(rootDirectory, "sub"), 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating directory: %v", mkdirError)
	}
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "sub"), "b.py", "print()")

	treeResult, buildError := scan.BuildTree(scan.Options{Root: rootDirectory, IncludeContent: true})
	if buildError != nil {
		testingInstance.Fatalf("building tree: %v", buildError)
	}

	if treeResult.Root == nil || treeResult.Root.Kind != types.EntryKindDirectory {
		testingInstance.Fatal("missing root node")
	}
	if len(treeResult.Root.Children) != 2 {
		testingInstance.Fatalf("root children = %d, expected 2", len(treeResult.Root.Children))
	}
	if treeResult.Root.Children[0].Name != "a.txt" || treeResult.Root.Children[1].Name != "sub" {
		testingInstance.Errorf("unexpected child order: %s, %s", treeResult.Root.Children[0].Name, treeResult.Root.Children[1].Name)
	}
	if len(treeResult.Files) != 2 {
		testingInstance.Fatalf("file events = %d, expected 2", len(treeResult.Files))
	}
	if treeResult.Files[1].Content != "print()" {
		testingInstance.Errorf("nested file content = %q", treeResult.Files[1].Content)
	}
}
