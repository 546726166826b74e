// Package drive is a minimal read-only client for the Google Drive v3
// files listing API, covering exactly what the catalog sync needs.
package drive

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/google"
)

const (
	// FolderMimeType identifies sub-folders in a listing.
	FolderMimeType = "application/vnd.google-apps.folder"

	// DefaultBaseURL is the Drive v3 API root.
	DefaultBaseURL = "https://www.googleapis.com/drive/v3"

	// DefaultPageSize is the listing page size cap imposed by the API.
	DefaultPageSize = 1000

	readonlyScope = "https://www.googleapis.com/auth/drive.readonly"

	listFields = "files(id,name,mimeType,modifiedTime,parents),nextPageToken"
)

// File is one entry of a folder listing.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	ModifiedTime time.Time `json:"modifiedTime"`
	Parents      []string  `json:"parents,omitempty"`
}

// IsFolder reports whether the entry is a sub-folder.
func (f *File) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// FileList is one page of a folder listing.
type FileList struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client lists Drive folders. Authentication is either a long-lived API key
// (public shared folders) or a service-account token source.
type Client struct {
	http     *resty.Client
	apiKey   string
	pageSize int
}

// NewClient creates a client authenticated with an API key.
func NewClient(baseURL, apiKey string, pageSize int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second)

	return &Client{
		http:     httpClient,
		apiKey:   apiKey,
		pageSize: pageSize,
	}
}

// NewServiceAccountClient creates a client authenticated with a Google
// service-account key (drive.readonly scope). Token refresh is handled by
// the oauth2 transport.
func NewServiceAccountClient(baseURL string, credentialsJSON []byte, pageSize int) (*Client, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, readonlyScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials: %w", err)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	httpClient := resty.NewWithClient(conf.Client(context.Background())).
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second)

	return &Client{
		http:     httpClient,
		pageSize: pageSize,
	}, nil
}

// ListFolder fetches one page of a folder's listing: image files plus
// sub-folders, trashed entries excluded. Pass the previous page's token to
// continue; an empty NextPageToken means the listing is complete.
func (c *Client) ListFolder(ctx context.Context, folderID, pageToken string) (*FileList, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folder id is required")
	}

	query := fmt.Sprintf(
		"'%s' in parents and (mimeType contains 'image/' or mimeType='%s') and trashed=false",
		folderID, FolderMimeType,
	)

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("fields", listFields).
		SetQueryParam("pageSize", strconv.Itoa(c.pageSize)).
		SetResult(&FileList{}).
		SetError(&apiError{}).
		ForceContentType("application/json")

	if c.apiKey != "" {
		req.SetQueryParam("key", c.apiKey)
	}
	if pageToken != "" {
		req.SetQueryParam("pageToken", pageToken)
	}

	resp, err := req.Get("/files")
	if err != nil {
		return nil, fmt.Errorf("drive request failed: %w", err)
	}

	if resp.IsError() {
		if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("drive api error: %d %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return nil, fmt.Errorf("drive api error: %d %s", resp.StatusCode(), resp.String())
	}

	return resp.Result().(*FileList), nil
}
