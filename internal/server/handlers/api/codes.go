package api

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error
	CodeAccessDenied   = "E_ACCESS_DENIED"   // access denied
	CodeUnauthorized   = "E_UNAUTHORIZED"    // missing or invalid credentials

	// Tree errors
	CodeFolderNotFound = "E_FOLDER_NOT_FOUND" // the folder does not exist
	CodeItemNotFound   = "E_ITEM_NOT_FOUND"   // an item expected by the sync session is missing

	// Sync errors
	CodeSyncHostIO         = "E_SYNC_HOST_IO"         // the host tree could not be read
	CodeAssetstoreNotFound = "E_ASSETSTORE_NOT_FOUND" // the assetstore does not exist

	// Notification errors
	CodeProgressNotFound = "E_PROGRESS_NOT_FOUND" // the progress record expired or never existed
)
