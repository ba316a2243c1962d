// Package rehost moves externally hosted assets into platform-owned storage.
// Every operation degrades gracefully: a failed rehost means "keep the
// original URL", never an aborted import.
package rehost

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"time"

	"github.com/robinjoseph08/golib/logger"
	"github.com/skolio/kabinet/pkg/config"
)

// MinAssetBytes is the smallest response body accepted as real content.
// Anything under it is assumed to be an error page served with a 200.
const MinAssetBytes = 256

// pathPrefix marks rehosted assets so their provenance stays traceable.
const pathPrefix = "imported"

var unsafeFilenameRE = regexp.MustCompile(`[^a-zA-Z0-9.-]+`)

type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, string, error)
}

type Uploader interface {
	Upload(ctx context.Context, token, path string, data []byte, contentType string) (string, error)
}

// Renderer rasterizes the first page of a PDF to a JPEG thumbnail.
type Renderer interface {
	FirstPageJPEG(data []byte) ([]byte, error)
}

type Service struct {
	assetHost  string
	downloader Downloader
	uploader   Uploader
	renderer   Renderer
	now        func() time.Time
}

func NewService(cfg *config.Config, downloader Downloader, uploader Uploader, renderer Renderer) *Service {
	return &Service{
		assetHost:  cfg.AssetHost,
		downloader: downloader,
		uploader:   uploader,
		renderer:   renderer,
		now:        time.Now,
	}
}

// Rehost downloads sourceURL and re-uploads it under the destination folder,
// returning the new stable URL. The second return reports success; on false
// the caller keeps the original URL. URLs already pointing at the platform's
// own storage are returned unchanged.
func (svc *Service) Rehost(ctx context.Context, token, sourceURL, destFolder string) (string, bool) {
	log := logger.FromContext(ctx)

	if sourceURL == "" {
		return "", false
	}
	if svc.ownAsset(sourceURL) {
		return sourceURL, true
	}

	data, contentType, err := svc.downloader.Download(ctx, sourceURL)
	if err != nil {
		log.Warn("asset download failed", logger.Data{"url": sourceURL, "error": err.Error()})
		return "", false
	}
	if len(data) < MinAssetBytes {
		log.Warn("asset too small, treating as error page", logger.Data{"url": sourceURL, "bytes": len(data)})
		return "", false
	}

	newURL, err := svc.uploader.Upload(ctx, token, svc.destPath(sourceURL, destFolder), data, contentType)
	if err != nil {
		log.Warn("asset upload failed", logger.Data{"url": sourceURL, "error": err.Error()})
		return "", false
	}

	return newURL, true
}

// RehostPDFThumbnail renders the first page of the PDF at sourceURL to a
// JPEG and rehosts that image. Failure here is tolerated independently and
// never blocks the PDF's own rehosting.
func (svc *Service) RehostPDFThumbnail(ctx context.Context, token, pdfURL, destFolder string) (string, bool) {
	log := logger.FromContext(ctx)

	if pdfURL == "" || svc.renderer == nil {
		return "", false
	}

	data, _, err := svc.downloader.Download(ctx, pdfURL)
	if err != nil {
		log.Warn("thumbnail source download failed", logger.Data{"url": pdfURL, "error": err.Error()})
		return "", false
	}

	thumb, err := svc.renderer.FirstPageJPEG(data)
	if err != nil {
		log.Warn("thumbnail render failed", logger.Data{"url": pdfURL, "error": err.Error()})
		return "", false
	}

	name := thumbnailName(pdfURL)
	newURL, err := svc.uploader.Upload(ctx, token, svc.folderPath(destFolder, name), thumb, "image/jpeg")
	if err != nil {
		log.Warn("thumbnail upload failed", logger.Data{"url": pdfURL, "error": err.Error()})
		return "", false
	}

	return newURL, true
}

func (svc *Service) ownAsset(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host == svc.assetHost
}

func (svc *Service) destPath(sourceURL, destFolder string) string {
	return svc.folderPath(destFolder, SanitizeFilename(filenameOf(sourceURL)))
}

func (svc *Service) folderPath(destFolder, name string) string {
	return fmt.Sprintf("%s/%s/%d-%s", pathPrefix, destFolder, svc.now().Unix(), name)
}

// SanitizeFilename replaces every character outside [a-zA-Z0-9.-] so storage
// paths stay collision-safe and portable.
func SanitizeFilename(name string) string {
	if name == "" {
		return "asset"
	}
	return unsafeFilenameRE.ReplaceAllString(name, "_")
}

func filenameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}

func thumbnailName(pdfURL string) string {
	base := SanitizeFilename(filenameOf(pdfURL))
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base + "-thumbnail.jpg"
}
