package gcs

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/pkg/helpers"
)

type stored struct {
	path        string
	contentType string
	data        []byte
}

func newTestStore(maxBytes int64) (*ImageStore, *[]stored, *[]string) {
	var puts []stored
	var dels []string
	// loopback httptest servers need a dialer without the address check
	s := &ImageStore{
		bucket:   "covers",
		maxBytes: maxBytes,
		http:     &http.Client{Timeout: 2 * time.Second, CheckRedirect: limitRedirects},
		put: func(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
			data, _ := io.ReadAll(r)
			puts = append(puts, stored{path: objectPath, contentType: contentType, data: data})
			return helpers.PublicURL("covers", objectPath), nil
		},
		del: func(_ context.Context, objectPath string) error {
			dels = append(dels, objectPath)
			return nil
		},
	}
	return s, &puts, &dels
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURI(t *testing.T) {
	png := []byte("\x89PNG fake")

	tests := []struct {
		name     string
		uri      string
		max      int64
		wantType string
		wantErr  error
	}{
		{"png", dataURI("image/png", png), 1024, "image/png", nil},
		{"uppercase mime", dataURI("IMAGE/JPEG", png), 1024, "image/jpeg", nil},
		{"not an image", dataURI("text/plain", png), 1024, "", application.ErrInvalidImage},
		{"not base64", "data:image/png,rawdata", 1024, "", application.ErrInvalidImage},
		{"no comma", "data:image/png;base64", 1024, "", application.ErrInvalidImage},
		{"bad encoding", "data:image/png;base64,@@@", 1024, "", application.ErrInvalidImage},
		{"empty", "data:image/png;base64,", 1024, "", application.ErrInvalidImage},
		{"too large", dataURI("image/png", bytes.Repeat([]byte("a"), 64)), 16, "", application.ErrImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ct, err := decodeDataURI(tt.uri, tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, ct)
			assert.Equal(t, png, data)
		})
	}
}

func TestUpload_DataURI(t *testing.T) {
	s, puts, _ := newTestStore(1024)

	url, err := s.Upload(context.Background(), "user-1", dataURI("image/png", []byte("img")))
	require.NoError(t, err)

	require.Len(t, *puts, 1)
	got := (*puts)[0]
	assert.True(t, strings.HasPrefix(got.path, "books/user-1/"))
	assert.True(t, strings.HasSuffix(got.path, ".png"))
	assert.Equal(t, "image/png", got.contentType)
	assert.Equal(t, []byte("img"), got.data)
	assert.Equal(t, helpers.PublicURL("covers", got.path), url)
}

func TestUpload_RemoteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cover.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		case "/huge.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s, puts, _ := newTestStore(32)
	ctx := context.Background()

	_, err := s.Upload(ctx, "user-1", srv.URL+"/cover.jpg")
	require.NoError(t, err)
	require.Len(t, *puts, 1)
	assert.Equal(t, "image/jpeg", (*puts)[0].contentType)
	assert.True(t, strings.HasSuffix((*puts)[0].path, ".jpg"))

	_, err = s.Upload(ctx, "user-1", srv.URL+"/page.html")
	assert.ErrorIs(t, err, application.ErrInvalidImage)

	_, err = s.Upload(ctx, "user-1", srv.URL+"/missing.png")
	assert.ErrorIs(t, err, application.ErrInvalidImage)

	_, err = s.Upload(ctx, "user-1", srv.URL+"/huge.png")
	assert.ErrorIs(t, err, application.ErrImageTooLarge)
}

func TestUpload_Rejects(t *testing.T) {
	s, puts, _ := newTestStore(1024)
	ctx := context.Background()

	_, err := s.Upload(ctx, "user-1", "ftp://example.com/a.png")
	assert.ErrorIs(t, err, application.ErrInvalidImage)

	_, err = s.Upload(ctx, "user-1", dataURI("image/x-unknown", []byte("img")))
	assert.ErrorIs(t, err, application.ErrInvalidImage)

	_, err = s.Upload(ctx, "user-1", dataURI("image/svg+xml", []byte("<svg onload=alert(1)/>")))
	assert.ErrorIs(t, err, application.ErrInvalidImage)

	assert.Empty(t, *puts)
}

func TestUpload_NotConfigured(t *testing.T) {
	s := NewImageStore(nil, "", 1024)

	_, err := s.Upload(context.Background(), "user-1", dataURI("image/png", []byte("img")))
	assert.ErrorIs(t, err, errNotConfigured)
	assert.NoError(t, s.Delete(context.Background(), "https://storage.googleapis.com/covers/a.png"))
}

func TestDelete_OnlyInsideBucket(t *testing.T) {
	s, _, dels := newTestStore(1024)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, helpers.PublicURL("covers", "books/u/a.png")))
	require.NoError(t, s.Delete(ctx, "https://res.cloudinary.com/demo/image/upload/a.png"))
	require.NoError(t, s.Delete(ctx, helpers.PublicURL("other", "books/u/a.png")))

	assert.Equal(t, []string{"books/u/a.png"}, *dels)
}

func TestUpload_RemoteURLRefusesInternalHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("internal-secret"))
	}))
	defer srv.Close()

	s, puts, _ := newTestStore(1024)
	s.http = newFetchClient(2 * time.Second)
	ctx := context.Background()

	for _, u := range []string{
		srv.URL + "/computeMetadata/v1/",
		"http://169.254.169.254/latest/meta-data/",
		"http://[::1]:9/cover.png",
		"http://0.0.0.0:9/cover.png",
	} {
		_, err := s.Upload(ctx, "user-1", u)
		assert.ErrorIs(t, err, application.ErrInvalidImage, u)
	}
	assert.Empty(t, *puts)
}

func TestUpload_RemoteURLRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/loop":
			http.Redirect(w, r, srv.URL+"/loop", http.StatusFound)
		case "/once":
			http.Redirect(w, r, srv.URL+"/cover.png", http.StatusFound)
		case "/file":
			http.Redirect(w, r, "file:///etc/passwd", http.StatusFound)
		case "/cover.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png"))
		}
	}))
	defer srv.Close()

	s, puts, _ := newTestStore(1024)
	ctx := context.Background()

	_, err := s.Upload(ctx, "user-1", srv.URL+"/once")
	require.NoError(t, err)
	require.Len(t, *puts, 1)

	_, err = s.Upload(ctx, "user-1", srv.URL+"/loop")
	assert.ErrorIs(t, err, application.ErrInvalidImage)

	_, err = s.Upload(ctx, "user-1", srv.URL+"/file")
	assert.ErrorIs(t, err, application.ErrInvalidImage)
	assert.Len(t, *puts, 1)
}

func TestPublicIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fc00::1", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::ffff:127.0.0.1", false},
		{"224.0.0.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, publicIP(net.ParseIP(tt.ip)))
		})
	}
}
