package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFolder(t *testing.T) {
	t.Run("builds query and decodes page", func(t *testing.T) {
		var gotQuery map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"q":        r.URL.Query().Get("q"),
				"fields":   r.URL.Query().Get("fields"),
				"pageSize": r.URL.Query().Get("pageSize"),
				"key":      r.URL.Query().Get("key"),
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(FileList{
				Files: []File{
					{ID: "f1", Name: "IMG_1.jpg", MimeType: "image/jpeg"},
					{ID: "sub", Name: "Reception", MimeType: FolderMimeType},
				},
				NextPageToken: "tok-2",
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key", 100)
		page, err := client.ListFolder(context.Background(), "root-folder", "")

		require.NoError(t, err)
		require.Len(t, page.Files, 2)
		assert.Equal(t, "tok-2", page.NextPageToken)
		assert.False(t, page.Files[0].IsFolder())
		assert.True(t, page.Files[1].IsFolder())

		assert.Contains(t, gotQuery["q"], "'root-folder' in parents")
		assert.Contains(t, gotQuery["q"], "mimeType contains 'image/'")
		assert.Contains(t, gotQuery["q"], "trashed=false")
		assert.Equal(t, "100", gotQuery["pageSize"])
		assert.Equal(t, "test-key", gotQuery["key"])
	})

	t.Run("forwards page token", func(t *testing.T) {
		var gotToken string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.URL.Query().Get("pageToken")
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(FileList{})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "k", 0)
		_, err := client.ListFolder(context.Background(), "folder", "tok-2")

		require.NoError(t, err)
		assert.Equal(t, "tok-2", gotToken)
	})

	t.Run("non-2xx becomes an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"code": 403, "message": "rate limit exceeded"},
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "k", 10)
		_, err := client.ListFolder(context.Background(), "folder", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "rate limit exceeded")
	})

	t.Run("empty folder id is rejected", func(t *testing.T) {
		client := NewClient("http://localhost:0", "k", 10)
		_, err := client.ListFolder(context.Background(), "", "")
		assert.Error(t, err)
	})
}
