// Package storage stores uploaded listing images and their thumbnails.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 10 << 20

// Thumbnail bounds; aspect ratio is preserved.
const (
	ThumbnailWidth  = 400
	ThumbnailHeight = 300
)

// Backends accepted by Config.Driver.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

var (
	// ErrUnsupportedType is returned for files that are not jpeg, png or gif.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrTooLarge is returned for files over MaxImageSize.
	ErrTooLarge = errors.New("image too large")
	// ErrInvalidImage is returned when the bytes cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid image data")
)

// Object describes a stored image and its thumbnail.
type Object struct {
	Key          string
	URL          string
	ThumbnailKey string
	ThumbnailURL string
}

// Store saves image bytes and returns where they can be fetched.
type Store interface {
	Save(ctx context.Context, data []byte, filename string) (Object, error)
	Delete(ctx context.Context, keys ...string) error
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint"`   // for S3-compatible services
	PublicURL       string `yaml:"public_url"` // prefix for object URLs
}

// Config selects and configures a backend.
type Config struct {
	Driver  string   `yaml:"driver"`
	Dir     string   `yaml:"dir"`
	BaseURL string   `yaml:"base_url"`
	S3      S3Config `yaml:"s3"`
}

// New creates the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewFileStore(cfg.Dir, cfg.BaseURL)
	case DriverS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// prepared is an upload that passed validation, with its thumbnail rendered.
type prepared struct {
	key          string
	thumbKey     string
	contentType  string
	thumbnail    []byte
	originalData []byte
}

// prepare validates an upload, names it, and renders its thumbnail.
func prepare(data []byte, filename string) (*prepared, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct, ok := contentTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	thumb, err := Thumbnail(data, ThumbnailWidth, ThumbnailHeight)
	if err != nil {
		return nil, err
	}

	key := path.Join("properties", uuid.NewString()+ext)
	return &prepared{
		key:          key,
		thumbKey:     ThumbnailKey(key),
		contentType:  ct,
		thumbnail:    thumb,
		originalData: data,
	}, nil
}

// ThumbnailKey returns the key of the thumbnail stored alongside key.
func ThumbnailKey(key string) string {
	dir, file := path.Split(key)
	return path.Join(dir, "thumbs", strings.TrimSuffix(file, path.Ext(file))+".jpg")
}
