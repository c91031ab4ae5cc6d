package settings

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/openmined/syncfolders/internal/syncfolder"
)

const KeyChecksumSizeLimit = "synced_folders.checksum_size_limit"

// ValidateInteger accepts whole numbers and numeric strings
func ValidateInteger(value any) (any, error) {
	invalid := syncfolder.NewValidationError("value", "Checksum size must be an integer")

	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, invalid
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt64 || v < math.MinInt64 {
			return nil, invalid
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, invalid
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, invalid
		}
		return n, nil
	default:
		return nil, invalid
	}
}

// RegisterDefaults declares the settings the server understands
func RegisterDefaults(s *SettingsService, checksumSizeLimit int64) {
	s.Register(KeyChecksumSizeLimit, checksumSizeLimit, ValidateInteger)
}
