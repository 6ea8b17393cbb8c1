package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bhramann/marketplace-api/internal/domain"
	"github.com/bhramann/marketplace-api/internal/media"
	"github.com/bhramann/marketplace-api/internal/repository/ports"
)

// Logical folders grouping uploaded blobs by the payload shape they came
// from. Organizational only, not security-relevant.
const (
	folderMainPhotos = "mainPhotos"
	folderHighlights = "highlights"
	folderStays      = "stays"
)

const defaultMaxInlineBytes = int64(10 * 1024 * 1024)

type AssetPipelineConfig struct {
	Bucket string
	// PublicBaseURL is the prefix every stored blob is reachable under
	// (e.g. https://cdn.example.com/marketplace). It also identifies which
	// URLs belong to this bucket during purge.
	PublicBaseURL  string
	MaxInlineBytes int64
	// MaxDimension, when positive, rejects decoded images wider or taller
	// than this many pixels.
	MaxDimension int
}

// AssetPipeline translates inline-encoded image payloads in a package into
// durable blob URLs and reverses the mapping when the package is deleted.
type AssetPipeline struct {
	storage      ports.ObjectStorage
	bucket       string
	publicBase   string
	maxBytes     int64
	maxDimension int
}

func NewAssetPipeline(storage ports.ObjectStorage, cfg AssetPipelineConfig) (*AssetPipeline, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if bucket == "" {
		return nil, errors.New("asset pipeline: bucket is required")
	}
	if publicBase == "" {
		return nil, errors.New("asset pipeline: public base URL is required")
	}
	maxBytes := cfg.MaxInlineBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxInlineBytes
	}
	return &AssetPipeline{
		storage:      storage,
		bucket:       bucket,
		publicBase:   publicBase,
		maxBytes:     maxBytes,
		maxDimension: cfg.MaxDimension,
	}, nil
}

// PublicPrefix returns the URL prefix under which this pipeline publishes
// blobs, with a trailing slash.
func (p *AssetPipeline) PublicPrefix() string {
	return p.publicBase + "/"
}

type uploadJob struct {
	folder string
	value  string
	target *string
}

// Normalize walks the package's image fields and replaces every
// inline-encoded payload with the URL of a freshly uploaded blob. Values that
// are already URLs pass through unchanged, so repeated normalization is a
// no-op. Uploads run concurrently; array order is reassembled positionally.
// Any upload failure fails the whole call and no field is rewritten.
func (p *AssetPipeline) Normalize(ctx context.Context, pkg *domain.Package) error {
	jobs := make([]uploadJob, 0)
	for i := range pkg.MainPhotos {
		if media.IsInline(pkg.MainPhotos[i]) {
			jobs = append(jobs, uploadJob{folder: folderMainPhotos, value: pkg.MainPhotos[i], target: &pkg.MainPhotos[i]})
		}
	}
	for i := range pkg.Highlights {
		if media.IsInline(pkg.Highlights[i].Image) {
			jobs = append(jobs, uploadJob{folder: folderHighlights, value: pkg.Highlights[i].Image, target: &pkg.Highlights[i].Image})
		}
	}
	for i := range pkg.Stays {
		for j := range pkg.Stays[i].Images {
			if media.IsInline(pkg.Stays[i].Images[j]) {
				jobs = append(jobs, uploadJob{folder: folderStays, value: pkg.Stays[i].Images[j], target: &pkg.Stays[i].Images[j]})
			}
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	urls := make([]string, len(jobs))
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			urls[i], errs[i] = p.uploadInline(ctx, jobs[i].folder, jobs[i].value)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	for i := range jobs {
		*jobs[i].target = urls[i]
	}
	return nil
}

func (p *AssetPipeline) uploadInline(ctx context.Context, folder, value string) (string, error) {
	img, err := media.DecodeInline(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if int64(len(img.Data)) > p.maxBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, p.maxBytes)
	}
	if p.maxDimension > 0 {
		width, height, err := img.Dimensions()
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrValidation, err)
		}
		if width > p.maxDimension || height > p.maxDimension {
			return "", fmt.Errorf("%w: image exceeds %dpx", ErrValidation, p.maxDimension)
		}
	}

	objectName := folder + "/" + uuid.NewString() + img.Extension()
	if _, err := p.storage.Upload(ctx, p.bucket, objectName, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		return "", err
	}
	return p.publicBase + "/" + objectName, nil
}

// Purge deletes every blob referenced by the package whose URL falls under
// this pipeline's public prefix. URLs from other hosts are left alone.
// Individual deletions are best-effort: a failed delete is logged and the
// rest continue, so the owning record's removal is never blocked.
func (p *AssetPipeline) Purge(ctx context.Context, pkg *domain.Package) {
	prefix := p.PublicPrefix()
	for _, url := range pkg.ImageURLs() {
		if !strings.HasPrefix(url, prefix) {
			continue
		}
		objectName := strings.TrimPrefix(url, prefix)
		if objectName == "" {
			continue
		}
		if err := p.storage.Remove(ctx, p.bucket, objectName); err != nil {
			log.Printf("asset pipeline: purge %s/%s: %v", p.bucket, objectName, err)
		}
	}
}
