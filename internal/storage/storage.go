package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotConfigured = errors.New("blob storage is not configured")
	ErrNotFound      = errors.New("blob not found")
	ErrConflict      = errors.New("blob already exists")
)

// Object: загруженный файл в хранилище.
type Object struct {
	Path      string
	PublicURL string
	Size      int64
}

type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, size int64, body io.Reader) (Object, error)
	Remove(ctx context.Context, path string) error
}

// Client работает с REST API хранилища в стиле Supabase Storage.
type Client struct {
	baseURL    string
	bucket     string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает клиент хранилища; baseURL указывает на корень storage API.
func NewClient(baseURL, bucket, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload загружает файл без перезаписи существующего объекта.
func (c *Client) Upload(ctx context.Context, path, contentType string, size int64, body io.Reader) (Object, error) {
	if c.baseURL == "" {
		return Object{}, ErrNotConfigured
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(path), body)
	if err != nil {
		return Object{}, err
	}
	c.authorize(request)
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("x-upsert", "false")
	request.ContentLength = size

	if err := c.do(request); err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", path, err)
	}

	return Object{Path: path, PublicURL: c.PublicURL(path), Size: size}, nil
}

// Remove удаляет объект из хранилища.
func (c *Client) Remove(ctx context.Context, path string) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(path), nil)
	if err != nil {
		return err
	}
	c.authorize(request)

	if err := c.do(request); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}

// PublicURL возвращает публичную ссылку на объект публичного бакета.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, url.PathEscape(c.bucket), escapePath(path))
}

func (c *Client) objectURL(path string) string {
	return fmt.Sprintf("%s/object/%s/%s", c.baseURL, url.PathEscape(c.bucket), escapePath(path))
}

func (c *Client) authorize(request *http.Request) {
	if c.apiKey == "" {
		return
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("apikey", c.apiKey)
}

func (c *Client) do(request *http.Request) error {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))

	switch {
	case response.StatusCode >= 200 && response.StatusCode < 300:
		return nil
	case response.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case response.StatusCode == http.StatusConflict:
		return ErrConflict
	default:
		return fmt.Errorf("storage status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}
}

// escapePath экранирует сегменты пути, сохраняя разделители.
func escapePath(path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
