package syncfolder

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/openmined/syncfolders/internal/utils"
)

// MimeDetector maps a host file path to a MIME type
type MimeDetector func(path string) string

// DetectMime sniffs content first and falls back to the file extension
func DetectMime(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err == nil && mt.String() != "" && mt.String() != utils.DefaultContentType {
		return mt.String()
	}
	return utils.DetectContentType(path)
}
