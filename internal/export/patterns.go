package export

import (
	"fmt"
	"path/filepath"

	"github.com/aaronvstory/Project-Exporter/internal/config"
	"github.com/aaronvstory/Project-Exporter/internal/types"
	"github.com/aaronvstory/Project-Exporter/internal/utils"
)

const (
	structureOnlySuffix        = "_structure"
	structureAndContentSuffix  = "_structure_and_content"
	exclusionFailedErrorFormat = "collecting exclusion patterns for %s: %w"
)

// extensionsByFormat maps the export format to the output file extension.
var extensionsByFormat = map[string]string{
	types.FormatText:     ".txt",
	types.FormatMarkdown: ".md",
	types.FormatJSON:     ".json",
	types.FormatYAML:     ".yaml",
}

func formatExtension(format string) string {
	if extension, known := extensionsByFormat[format]; known {
		return extension
	}
	return extensionsByFormat[types.FormatText]
}

// resolveOutputPath determines where the export document is written. An
// explicit OutputPath wins; otherwise the file lands inside the root with a
// name derived from the project name, content inclusion, and format.
func resolveOutputPath(validatedRoot types.ValidatedRoot, options types.ExportOptions) string {
	if options.OutputPath != "" {
		return options.OutputPath
	}
	suffix := structureAndContentSuffix
	if !options.IncludeContents {
		suffix = structureOnlySuffix
	}
	fileName := validatedRoot.Name + suffix + formatExtension(options.Format)
	return filepath.Join(validatedRoot.AbsolutePath, fileName)
}

// outputSelfExclusionPatterns lists every filename a prior run of the tool
// could have written into the root: both name variants in all supported
// extensions. Excluding them keeps repeated runs from exporting their own
// previous output.
func outputSelfExclusionPatterns(projectName string) []string {
	var patterns []string
	for _, suffix := range []string{structureOnlySuffix, structureAndContentSuffix} {
		for _, format := range []string{types.FormatText, types.FormatMarkdown, types.FormatJSON, types.FormatYAML} {
			patterns = append(patterns, projectName+suffix+formatExtension(format))
		}
	}
	return patterns
}

// collectExclusionPatterns merges, in order: the default exclusion set,
// patterns from .ignore/.gitignore files under the root, caller-provided
// patterns, the implicit git exclusion, the output self-exclusions, and the
// explicit output filename when it sits inside the root. IncludeGit drops the
// git entries from the default set; caller-provided patterns are never
// filtered.
func collectExclusionPatterns(validatedRoot types.ValidatedRoot, options types.ExportOptions) ([]string, error) {
	var basePatterns []string
	if options.UseDefaultExcludes {
		for _, defaultPattern := range config.DefaultExcludePatterns {
			if options.IncludeGit && (defaultPattern == utils.GitDirectoryName || defaultPattern == utils.GitIgnoreFileName) {
				continue
			}
			basePatterns = append(basePatterns, defaultPattern)
		}
	}
	basePatterns = append(basePatterns, options.ExcludePatterns...)
	basePatterns = append(basePatterns, outputSelfExclusionPatterns(validatedRoot.Name)...)

	if options.OutputPath != "" {
		relativeOutputPath, relativeError := filepath.Rel(validatedRoot.AbsolutePath, options.OutputPath)
		if relativeError == nil && filepath.IsLocal(relativeOutputPath) {
			basePatterns = append(basePatterns, filepath.ToSlash(relativeOutputPath))
		}
	}

	aggregatedPatterns, loadError := config.LoadRecursiveIgnorePatterns(
		validatedRoot.AbsolutePath,
		basePatterns,
		options.UseGitignore,
		options.UseIgnoreFile,
		options.IncludeGit,
	)
	if loadError != nil {
		return nil, fmt.Errorf(exclusionFailedErrorFormat, validatedRoot.AbsolutePath, loadError)
	}
	return utils.DeduplicatePatterns(aggregatedPatterns), nil
}
