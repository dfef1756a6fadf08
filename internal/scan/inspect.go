package scan

import (
	"fmt"
	"os"

	"github.com/aaronvstory/Project-Exporter/internal/tokenizer"
	"github.com/aaronvstory/Project-Exporter/internal/utils"
)

const (
	// SkipReasonBinary marks files whose bodies are not text.
	SkipReasonBinary = "binary"
	// SkipReasonOversize marks files larger than the configured limit.
	SkipReasonOversize = "oversize"
	// SkipReasonUnreadable marks files whose bodies could not be read.
	SkipReasonUnreadable = "unreadable"
)

// fileInspectionConfig controls how much work inspectFile performs per file.
type fileInspectionConfig struct {
	IncludeContent bool
	MaxFileSize    int64
	TokenCounter   tokenizer.Counter
	TokenModel     string
	Warn           func(message string)
}

// fileInspectionResult carries everything learned about one file.
type fileInspectionResult struct {
	MimeType   string
	IsBinary   bool
	Content    string
	SkipReason string
	Tokens     int
	Model      string
}

// inspectFile classifies one regular file and, when requested, captures its
// body. Binary detection stays cheap when content is not needed: only the
// sniff prefix is read.
func inspectFile(filePath string, fileInfo os.FileInfo, inspectionConfig fileInspectionConfig) fileInspectionResult {
	inspectionResult := fileInspectionResult{}
	inspectionResult.MimeType = utils.DetectMimeType(filePath)

	isBinaryFile := utils.IsFileBinary(filePath)
	inspectionResult.IsBinary = isBinaryFile

	if !inspectionConfig.IncludeContent {
		return inspectionResult
	}

	if isBinaryFile {
		inspectionResult.SkipReason = SkipReasonBinary
		return inspectionResult
	}

	if inspectionConfig.MaxFileSize > 0 && fileInfo.Size() > inspectionConfig.MaxFileSize {
		inspectionResult.SkipReason = SkipReasonOversize
		return inspectionResult
	}

	fileBytes, readError := os.ReadFile(filePath)
	if readError != nil {
		inspectionResult.SkipReason = SkipReasonUnreadable
		return inspectionResult
	}

	if utils.IsBinary(fileBytes) {
		inspectionResult.IsBinary = true
		inspectionResult.SkipReason = SkipReasonBinary
		return inspectionResult
	}

	inspectionResult.Content = string(fileBytes)

	if inspectionConfig.TokenCounter != nil {
		countResult, countError := tokenizer.CountBytes(inspectionConfig.TokenCounter, fileBytes)
		if countError != nil {
			if inspectionConfig.Warn != nil {
				inspectionConfig.Warn(fmt.Sprintf(warningTokenCountFormat, filePath, countError))
			}
		} else if countResult.Counted {
			inspectionResult.Tokens = countResult.Tokens
			inspectionResult.Model = inspectionConfig.TokenModel
		}
	}

	return inspectionResult
}
