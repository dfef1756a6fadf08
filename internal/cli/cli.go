// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aaronvstory/Project-Exporter/internal/config"
	"github.com/aaronvstory/Project-Exporter/internal/export"
	"github.com/aaronvstory/Project-Exporter/internal/output"
	"github.com/aaronvstory/Project-Exporter/internal/services/clipboard"
	"github.com/aaronvstory/Project-Exporter/internal/types"
	"github.com/aaronvstory/Project-Exporter/internal/utils"
)

const (
	exclusionFlagName     = "e"
	noGitignoreFlagName   = "no-gitignore"
	noIgnoreFlagName      = "no-ignore"
	noDefaultsFlagName    = "no-defaults"
	includeGitFlagName    = "git"
	formatFlagName        = "format"
	structureOnlyFlagName = "structure-only"
	llmFlagName           = "llm"
	maxSizeFlagName       = "max-size"
	tokensFlagName        = "tokens"
	modelFlagName         = "model"
	clipboardFlagName     = "clipboard"
	outputFlagName        = "output"
	stdoutFlagName        = "stdout"
	configFlagName        = "config"
	versionFlagName       = "version"
	forceFlagName         = "force"
	globalFlagName        = "global"

	versionTemplate      = "project-exporter version: %s\n"
	defaultPath          = "."
	rootUse              = "project-exporter"
	rootShortDescription = "project-exporter command line interface"
	rootLongDescription  = `project-exporter renders a directory tree and bundles file contents
into a single document suitable for sharing or LLM context.
Use --format to select text, markdown, json, or yaml output.`
	versionFlagDescription = "display application version"

	exportUse              = "export [path]"
	exportAlias            = "e"
	exportShortDescription = "export directory structure and file contents (" + exportAlias + ")"
	exportLongDescription  = `Export the directory tree and file contents of a path into one document.
The document is written inside the exported directory unless --output or --stdout is given.`
	exportUsageExample = `  # Export the current project as text
  project-exporter export

  # Structure only, markdown, excluding vendor
  project-exporter export --structure-only --format markdown -e vendor .

  # LLM-optimized JSON with token counts to stdout
  project-exporter export --format json --llm --tokens --stdout .`

	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "display directory tree (" + treeAlias + ")"
	treeLongDescription  = `Render the directory tree of a path to standard output.
Equivalent to export --structure-only --stdout.`
	treeUsageExample = `  # Render the tree of the current directory
  project-exporter tree

  # Exclude node_modules
  project-exporter tree -e node_modules .`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a commented default configuration file.
Without --global the file is placed in the current directory as ` + utils.ConfigFileName + `.`

	exclusionFlagDescription        = "exclude path pattern"
	disableGitignoreFlagDescription = "do not use .gitignore"
	disableIgnoreFlagDescription    = "do not use .ignore"
	disableDefaultsFlagDescription  = "disable the default exclusion patterns"
	includeGitFlagDescription       = "include git directory"
	formatFlagDescription           = "output format (text, markdown, json, yaml)"
	structureOnlyFlagDescription    = "export the directory tree without file contents"
	llmFlagDescription              = "add per-file metadata for LLM consumption"
	maxSizeFlagDescription          = "skip file contents above this size (e.g. 512kb, 2mb)"
	tokensFlagDescription           = "include token counts"
	modelFlagDescription            = "tokenizer model to use for token counting"
	clipboardFlagDescription        = "copy the document to the clipboard"
	outputFlagDescription           = "write the document to this path"
	stdoutFlagDescription           = "print the document instead of writing a file"
	configFlagDescription           = "path to a configuration file"
	forceFlagDescription            = "overwrite an existing configuration file"
	globalFlagDescription           = "write the global configuration file"

	defaultTokenizerModelName = "gpt-4o"

	invalidFormatMessage        = "Invalid format value '%s'"
	invalidMaxSizeMessageFormat = "Invalid max-size value '%s': %v"
	initCompletedMessageFormat  = "Configuration written to %s\n"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatText, types.FormatMarkdown, types.FormatJSON, types.FormatYAML:
		return true
	default:
		return false
	}
}

// Execute runs the project-exporter application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var showVersion bool
	var configFilePath string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createExportCommand(logger, &configFilePath),
		createTreeCommand(logger, &configFilePath),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// pathOptions stores configuration for path-related flags.
type pathOptions struct {
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	disableDefaults   bool
	includeGit        bool
}

// addPathFlags registers path-related flags on the command.
func addPathFlags(command *cobra.Command, options *pathOptions) {
	command.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	command.Flags().BoolVar(&options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	command.Flags().BoolVar(&options.disableIgnoreFile, noIgnoreFlagName, false, disableIgnoreFlagDescription)
	command.Flags().BoolVar(&options.disableDefaults, noDefaultsFlagName, false, disableDefaultsFlagDescription)
	command.Flags().BoolVar(&options.includeGit, includeGitFlagName, false, includeGitFlagDescription)
}

// exportFlags holds every flag value the export and tree commands share.
type exportFlags struct {
	paths         pathOptions
	outputFormat  string
	structureOnly bool
	llmOptimize   bool
	maxSize       string
	tokensEnabled bool
	tokenModel    string
	toClipboard   bool
	outputPath    string
	toStdout      bool
}

func addExportFlags(command *cobra.Command, flags *exportFlags) {
	addPathFlags(command, &flags.paths)
	command.Flags().StringVar(&flags.outputFormat, formatFlagName, types.FormatText, formatFlagDescription)
	command.Flags().BoolVar(&flags.structureOnly, structureOnlyFlagName, false, structureOnlyFlagDescription)
	command.Flags().BoolVar(&flags.llmOptimize, llmFlagName, false, llmFlagDescription)
	command.Flags().StringVar(&flags.maxSize, maxSizeFlagName, "", maxSizeFlagDescription)
	command.Flags().BoolVar(&flags.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	command.Flags().StringVar(&flags.tokenModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	command.Flags().BoolVar(&flags.toClipboard, clipboardFlagName, false, clipboardFlagDescription)
	command.Flags().StringVar(&flags.outputPath, outputFlagName, "", outputFlagDescription)
	command.Flags().BoolVar(&flags.toStdout, stdoutFlagName, false, stdoutFlagDescription)
}

// createExportCommand returns the export subcommand.
func createExportCommand(logger *zap.Logger, configFilePath *string) *cobra.Command {
	var flags exportFlags

	exportCommand := &cobra.Command{
		Use:     exportUse,
		Aliases: []string{exportAlias},
		Short:   exportShortDescription,
		Long:    exportLongDescription,
		Example: exportUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			return runExport(command, logger, rootPath, &flags, *configFilePath, false)
		},
	}

	addExportFlags(exportCommand, &flags)
	return exportCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(logger *zap.Logger, configFilePath *string) *cobra.Command {
	var flags exportFlags

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			return runExport(command, logger, rootPath, &flags, *configFilePath, true)
		},
	}

	addExportFlags(treeCommand, &flags)
	return treeCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var writeGlobal bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initializeError := config.InitializeConfiguration(config.InitOptions{
				Target: target,
				Force:  forceOverwrite,
			})
			if initializeError != nil {
				return initializeError
			}
			fmt.Printf(initCompletedMessageFormat, writtenPath)
			return nil
		},
	}

	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&forceOverwrite, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// runExport merges configuration-file defaults with explicit flags and hands
// the resolved options to the export runner. A flag the user actually set
// always wins over the configuration file.
func runExport(command *cobra.Command, logger *zap.Logger, rootPath string, flags *exportFlags, configFilePath string, treeMode bool) error {
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: configFilePath,
	})
	if configurationError != nil {
		return configurationError
	}

	commandConfiguration := applicationConfiguration.Export
	if treeMode {
		commandConfiguration = applicationConfiguration.Tree
	}

	options, optionsError := resolveExportOptions(command, flags, commandConfiguration, treeMode)
	if optionsError != nil {
		return optionsError
	}

	runner := export.Runner{
		Logger:    logger,
		Clipboard: clipboard.NewService(),
	}
	result := runner.Run(rootPath, options)
	if !result.Success {
		return errors.New(result.Message)
	}
	if !options.ToStdout {
		summary := types.OutputSummary{
			TotalFiles:  result.FilesProcessed,
			TotalSize:   utils.FormatFileSize(result.TotalBytes),
			TotalTokens: result.TotalTokens,
		}
		if options.TokensEnabled {
			summary.Model = options.TokenModel
		}
		fmt.Println(result.Message)
		fmt.Println(output.FormatSummaryLine(&summary))
	}
	return nil
}

// resolveExportOptions applies flag-over-configuration precedence to produce
// the final ExportOptions.
func resolveExportOptions(command *cobra.Command, flags *exportFlags, commandConfiguration config.CommandConfiguration, treeMode bool) (types.ExportOptions, error) {
	options := types.ExportOptions{
		Format:             types.FormatText,
		IncludeContents:    !treeMode,
		UseDefaultExcludes: true,
		UseGitignore:       true,
		UseIgnoreFile:      true,
		MaxFileSize:        config.DefaultMaxFileSize,
		TokenModel:         defaultTokenizerModelName,
		ToStdout:           treeMode,
	}

	applyCommandConfiguration(&options, commandConfiguration)

	changed := command.Flags().Changed
	if changed(formatFlagName) {
		options.Format = flags.outputFormat
	}
	if changed(structureOnlyFlagName) {
		options.IncludeContents = !flags.structureOnly
	}
	if changed(llmFlagName) {
		options.LLMOptimize = flags.llmOptimize
	}
	if changed(maxSizeFlagName) {
		sizeLimit, parseError := utils.ParseSizeLimit(flags.maxSize)
		if parseError != nil {
			return types.ExportOptions{}, fmt.Errorf(invalidMaxSizeMessageFormat, flags.maxSize, parseError)
		}
		options.MaxFileSize = sizeLimit
	}
	if changed(tokensFlagName) {
		options.TokensEnabled = flags.tokensEnabled
	}
	if changed(modelFlagName) {
		options.TokenModel = flags.tokenModel
	}
	if changed(clipboardFlagName) {
		options.ToClipboard = flags.toClipboard
	}
	if changed(outputFlagName) {
		options.OutputPath = flags.outputPath
	}
	if changed(stdoutFlagName) {
		options.ToStdout = flags.toStdout
	}
	if changed(noGitignoreFlagName) {
		options.UseGitignore = !flags.paths.disableGitignore
	}
	if changed(noIgnoreFlagName) {
		options.UseIgnoreFile = !flags.paths.disableIgnoreFile
	}
	if changed(noDefaultsFlagName) {
		options.UseDefaultExcludes = !flags.paths.disableDefaults
	}
	if changed(includeGitFlagName) {
		options.IncludeGit = flags.paths.includeGit
	}
	options.ExcludePatterns = append(options.ExcludePatterns, flags.paths.exclusionPatterns...)

	normalizedFormat := strings.ToLower(options.Format)
	if !isSupportedFormat(normalizedFormat) {
		return types.ExportOptions{}, fmt.Errorf(invalidFormatMessage, options.Format)
	}
	options.Format = normalizedFormat

	return options, nil
}

// applyCommandConfiguration overlays configuration-file values onto the
// built-in defaults.
func applyCommandConfiguration(options *types.ExportOptions, commandConfiguration config.CommandConfiguration) {
	if commandConfiguration.Format != "" {
		options.Format = commandConfiguration.Format
	}
	if commandConfiguration.IncludeContent != nil {
		options.IncludeContents = *commandConfiguration.IncludeContent
	}
	if commandConfiguration.LLMOptimize != nil {
		options.LLMOptimize = *commandConfiguration.LLMOptimize
	}
	if commandConfiguration.MaxFileSize != "" {
		if sizeLimit, parseError := utils.ParseSizeLimit(commandConfiguration.MaxFileSize); parseError == nil {
			options.MaxFileSize = sizeLimit
		}
	}
	if commandConfiguration.Clipboard != nil {
		options.ToClipboard = *commandConfiguration.Clipboard
	}
	if commandConfiguration.Tokens.Enabled != nil {
		options.TokensEnabled = *commandConfiguration.Tokens.Enabled
	}
	if commandConfiguration.Tokens.Model != "" {
		options.TokenModel = commandConfiguration.Tokens.Model
	}
	if len(commandConfiguration.Paths.Exclude) > 0 {
		options.ExcludePatterns = append(options.ExcludePatterns, commandConfiguration.Paths.Exclude...)
	}
	if commandConfiguration.Paths.UseDefaults != nil {
		options.UseDefaultExcludes = *commandConfiguration.Paths.UseDefaults
	}
	if commandConfiguration.Paths.UseGitignore != nil {
		options.UseGitignore = *commandConfiguration.Paths.UseGitignore
	}
	if commandConfiguration.Paths.UseIgnoreFile != nil {
		options.UseIgnoreFile = *commandConfiguration.Paths.UseIgnoreFile
	}
	if commandConfiguration.Paths.IncludeGit != nil {
		options.IncludeGit = *commandConfiguration.Paths.IncludeGit
	}
}
