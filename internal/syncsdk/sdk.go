package syncsdk

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"github.com/openmined/syncfolders/internal/utils"
	"github.com/openmined/syncfolders/internal/version"
)

const (
	HeaderUserAgent = "User-Agent"
	HeaderVersion   = "X-SyncFolders-Version"
	HeaderDeviceID  = "X-SyncFolders-Device-Id"

	DataTypeSyncFolder = "syncFolder"
	DestinationFolder  = "folder"

	v1Assetstores = "/api/v1/assetstore"
	v1Import      = "/api/v1/assetstore/{id}/import"
	v1History     = "/api/v1/sync/history"
	v1Folders     = "/api/v1/folder"
	v1Folder      = "/api/v1/folder/{id}"
	v1FolderFiles = "/api/v1/folder/{id}/files"
	v1Setting     = "/api/v1/system/setting"
	v1Status      = "/api/v1/system/status"
	v1Progress    = "/api/v1/notification/progress/{id}"
	v1Stream      = "/api/v1/notification/stream"
)

var UserAgent = fmt.Sprintf("SyncFolders/%s (%s; %s; %s)", version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

// SyncSDK is a client for the sync folders API
type SyncSDK struct {
	client *req.Client
	config *Config
	Events *EventsAPI
}

func New(config *Config) (*SyncSDK, error) {
	if config.ServerURL == "" {
		return nil, ErrNoServerURL
	}
	if config.User == "" && config.Token == "" {
		return nil, ErrNoUser
	}
	config.ServerURL = strings.TrimRight(config.ServerURL, "/")

	client := req.C().
		SetBaseURL(config.ServerURL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1*time.Second).
		SetUserAgent(UserAgent).
		SetCommonHeader(HeaderVersion, version.Version).
		SetCommonHeader(HeaderDeviceID, utils.HWID).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	// only idempotent requests are retried
	client.SetCommonRetryCondition(func(resp *req.Response, err error) bool {
		if resp == nil || resp.Request == nil {
			return false
		}
		if m := resp.Request.Method; m != "GET" && m != "PUT" {
			return false
		}
		return err != nil || resp.StatusCode >= 500
	})

	if config.Token != "" {
		client.SetCommonBearerAuthToken(config.Token)
	} else {
		client.SetCommonQueryParam("user", config.User)
	}

	return &SyncSDK{
		client: client,
		config: config,
		Events: newEventsAPI(config),
	}, nil
}

func (s *SyncSDK) ListAssetstores(ctx context.Context) ([]*Assetstore, error) {
	var resp struct {
		Assetstores []*Assetstore `json:"assetstores"`
	}
	res, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Get(v1Assetstores)
	if err := handleAPIError(res, err, "list assetstores"); err != nil {
		return nil, err
	}
	return resp.Assetstores, nil
}

// Import runs a sync session and blocks until it finishes
func (s *SyncSDK) Import(ctx context.Context, params *ImportParams) (*ImportResult, error) {
	if params.DataType == "" {
		params.DataType = DataTypeSyncFolder
	}
	if params.DestinationType == "" {
		params.DestinationType = DestinationFolder
	}

	var resp ImportResult
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", params.AssetstoreID).
		SetBody(params).
		SetSuccessResult(&resp).
		Post(v1Import)
	if err := handleAPIError(res, err, "import"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *SyncSDK) History(ctx context.Context, limit int) ([]*SyncSession, error) {
	var resp struct {
		Sessions []*SyncSession `json:"sessions"`
	}
	r := s.client.R().SetContext(ctx).SetSuccessResult(&resp)
	if limit > 0 {
		r.SetQueryParam("limit", fmt.Sprint(limit))
	}
	res, err := r.Get(v1History)
	if err := handleAPIError(res, err, "sync history"); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (s *SyncSDK) CreateFolder(ctx context.Context, params *CreateFolderParams) (*Folder, error) {
	var resp Folder
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&resp).
		Post(v1Folders)
	if err := handleAPIError(res, err, "create folder"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *SyncSDK) ListFolders(ctx context.Context, params *ListFoldersParams) ([]*Folder, error) {
	var resp struct {
		Folders []*Folder `json:"folders"`
	}
	r := s.client.R().SetContext(ctx).SetSuccessResult(&resp)
	if params != nil {
		if params.ParentID != "" {
			r.SetQueryParam("parentId", params.ParentID)
		}
		if params.Name != "" {
			r.SetQueryParam("name", params.Name)
		}
	}
	res, err := r.Get(v1Folders)
	if err := handleAPIError(res, err, "list folders"); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

func (s *SyncSDK) GetFolder(ctx context.Context, id string) (*Folder, error) {
	var resp Folder
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetSuccessResult(&resp).
		Get(v1Folder)
	if err := handleAPIError(res, err, "get folder"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Files lists every file under a folder with its path relative to it
func (s *SyncSDK) Files(ctx context.Context, folderID string) ([]*File, error) {
	var resp struct {
		Files []*File `json:"files"`
	}
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", folderID).
		SetSuccessResult(&resp).
		Get(v1FolderFiles)
	if err := handleAPIError(res, err, "list files"); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (s *SyncSDK) GetSetting(ctx context.Context, key string) (any, error) {
	var resp any
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", key).
		SetSuccessResult(&resp).
		Get(v1Setting)
	if err := handleAPIError(res, err, "get setting"); err != nil {
		return nil, err
	}
	return resp, nil
}

// SetSetting writes one setting and returns its stored value
func (s *SyncSDK) SetSetting(ctx context.Context, key string, value any) (any, error) {
	var resp map[string]any
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"key": key, "value": value}).
		SetSuccessResult(&resp).
		Put(v1Setting)
	if err := handleAPIError(res, err, "set setting"); err != nil {
		return nil, err
	}
	return resp[key], nil
}

func (s *SyncSDK) Progress(ctx context.Context, id string) (*ProgressRecord, error) {
	var resp ProgressRecord
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetSuccessResult(&resp).
		Get(v1Progress)
	if err := handleAPIError(res, err, "get progress"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *SyncSDK) Status(ctx context.Context) (*ServerStatus, error) {
	var resp ServerStatus
	res, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Get(v1Status)
	if err := handleAPIError(res, err, "server status"); err != nil {
		return nil, err
	}
	return &resp, nil
}
