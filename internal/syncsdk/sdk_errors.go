package syncsdk

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrNoServerURL = errors.New("sdk: server url missing")
	ErrNoUser      = errors.New("sdk: user or token required")
)

const (
	CodeInvalidRequest     = "E_INVALID_REQUEST"
	CodeRateLimited        = "E_RATE_LIMITED"
	CodeInternalError      = "E_INTERNAL_ERROR"
	CodeAccessDenied       = "E_ACCESS_DENIED"
	CodeUnauthorized       = "E_UNAUTHORIZED"
	CodeFolderNotFound     = "E_FOLDER_NOT_FOUND"
	CodeItemNotFound       = "E_ITEM_NOT_FOUND"
	CodeSyncHostIO         = "E_SYNC_HOST_IO"
	CodeAssetstoreNotFound = "E_ASSETSTORE_NOT_FOUND"
	CodeProgressNotFound   = "E_PROGRESS_NOT_FOUND"
)

// APIError is the error envelope returned by the server
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("sdk: %s: http request error: %w", operation, requestErr)
	}

	if resp.IsErrorState() {
		if err, ok := resp.ErrorResult().(*APIError); ok && err.Code != "" {
			err.Status = resp.StatusCode
			return fmt.Errorf("sdk: %s: %w", operation, err)
		}
		return fmt.Errorf("sdk: %s: unexpected status %s", operation, resp.Status)
	}

	return nil
}
