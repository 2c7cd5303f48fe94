package gcs

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/pkg/helpers"
)

var (
	errNotConfigured = errors.New("gcs not configured")
	errBlockedAddr   = errors.New("image host resolves to a non-public address")
	errRedirect      = errors.New("image redirect rejected")
)

const maxRedirects = 3

// SVG is left out: the bucket is public and SVG can carry script.
var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

type putFunc func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
type deleteFunc func(ctx context.Context, objectPath string) error

// ImageStore hosts book cover images in a GCS bucket.
type ImageStore struct {
	bucket   string
	maxBytes int64
	http     *http.Client
	put      putFunc
	del      deleteFunc
}

func NewImageStore(client *storage.Client, bucket string, maxBytes int64) *ImageStore {
	s := &ImageStore{
		bucket:   bucket,
		maxBytes: maxBytes,
		http:     newFetchClient(15 * time.Second),
	}
	if client != nil && bucket != "" {
		s.put = func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
			return helpers.UploadObject(ctx, client, bucket, objectPath, contentType, r)
		}
		s.del = func(ctx context.Context, objectPath string) error {
			return helpers.DeleteObject(ctx, client, bucket, objectPath)
		}
	}
	return s
}

// Upload stores the image carried by payload (data URI or http(s) URL) and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, ownerID, payload string) (string, error) {
	if s.put == nil {
		return "", errNotConfigured
	}
	var (
		data        []byte
		contentType string
		err         error
	)
	switch {
	case strings.HasPrefix(payload, "data:"):
		data, contentType, err = decodeDataURI(payload, s.maxBytes)
	case strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://"):
		data, contentType, err = s.fetch(ctx, payload)
	default:
		err = application.ErrInvalidImage
	}
	if err != nil {
		return "", err
	}
	ext, ok := imageExt[contentType]
	if !ok {
		return "", application.ErrInvalidImage
	}
	objectPath := path.Join("books", ownerID, uuid.NewString()+ext)
	return s.put(ctx, objectPath, contentType, bytes.NewReader(data))
}

// Delete removes an image previously returned by Upload. URLs outside the bucket are ignored.
func (s *ImageStore) Delete(ctx context.Context, rawURL string) error {
	if s.del == nil {
		return nil
	}
	objectPath, ok := helpers.ObjectPathFromURL(s.bucket, rawURL)
	if !ok {
		return nil
	}
	return s.del(ctx, objectPath)
}

func (s *ImageStore) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, "", application.ErrInvalidImage
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", application.ErrInvalidImage
	}
	res, err := s.http.Do(req)
	if err != nil {
		if errors.Is(err, errBlockedAddr) || errors.Is(err, errRedirect) {
			return nil, "", application.ErrInvalidImage
		}
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, "", application.ErrInvalidImage
	}
	contentType := mediaType(res.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", application.ErrInvalidImage
	}
	data, err := readLimited(res.Body, s.maxBytes)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// newFetchClient returns the client used for remote image URLs. The address
// check runs after DNS resolution on every dial, so redirects and rebinding
// cannot reach internal hosts.
func newFetchClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, Control: rejectNonPublic}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 nil,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			MaxIdleConns:          10,
			IdleConnTimeout:       30 * time.Second,
		},
		CheckRedirect: limitRedirects,
	}
}

func rejectNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return errBlockedAddr
	}
	if ip := net.ParseIP(host); ip == nil || !publicIP(ip) {
		return errBlockedAddr
	}
	return nil
}

var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// publicIP reports whether ip is routable on the public internet.
func publicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

func limitRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errRedirect
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return errRedirect
	}
	return nil
}

// decodeDataURI parses "data:image/<type>;base64,<payload>".
func decodeDataURI(uri string, maxBytes int64) ([]byte, string, error) {
	meta, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", application.ErrInvalidImage
	}
	contentType, params, _ := strings.Cut(meta, ";")
	contentType = mediaType(contentType)
	if !strings.HasPrefix(contentType, "image/") || !strings.Contains(params, "base64") {
		return nil, "", application.ErrInvalidImage
	}
	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(encoded))) > maxBytes+2 {
		return nil, "", application.ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", application.ErrInvalidImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", application.ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, "", application.ErrInvalidImage
	}
	return data, contentType, nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, application.ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, application.ErrInvalidImage
	}
	return data, nil
}

func mediaType(v string) string {
	mt, _, _ := strings.Cut(v, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

var _ application.ImageStore = (*ImageStore)(nil)
