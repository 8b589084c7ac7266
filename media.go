package main

// media.go is the media host side of the workflows: uploads and asset handles.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	FolderSkills   = "portfolio/skills"
	FolderProjects = "portfolio/projects"
	FolderArticles = "portfolio/articles"
	FolderResume   = "portfolio/resume"
)

type UploadOptions struct {
	Folder       string
	ResourceType string
	Format       string
}

// Asset is an uploaded file: where it is served from and the handle needed to
// destroy it.
type Asset struct {
	URL      string
	PublicID string
}

type MediaHost interface {
	Upload(ctx context.Context, r io.Reader, opts UploadOptions) (Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

type cloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryHost(cloudName, apiKey, apiSecret string) (MediaHost, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are not set")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &cloudinaryHost{cld: cld}, nil
}

func (h *cloudinaryHost) Upload(ctx context.Context, r io.Reader, opts UploadOptions) (Asset, error) {
	resp, err := h.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       opts.Folder,
		ResourceType: opts.ResourceType,
		Format:       opts.Format,
	})
	if err != nil {
		return Asset{}, err
	}
	if resp.Error.Message != "" {
		return Asset{}, errors.New(resp.Error.Message)
	}
	return Asset{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (h *cloudinaryHost) Destroy(ctx context.Context, publicID string) error {
	resp, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if resp.Error.Message != "" {
		return errors.New(resp.Error.Message)
	}
	if resp.Result != "ok" {
		return fmt.Errorf("destroy %s: %s", publicID, resp.Result)
	}
	return nil
}

// assetLocator recovers a destroyable handle from a stored URL for records
// that predate handle storage. match picks the id out of the URL and folder
// prefixes it.
type assetLocator struct {
	match  *regexp.Regexp
	folder string
}

var (
	skillAssets   = assetLocator{regexp.MustCompile(`/portfolio/skills/([^/.]+)`), FolderSkills}
	projectAssets = assetLocator{regexp.MustCompile(`/portfolio/projects/([^/.]+)`), FolderProjects}
	articleAssets = assetLocator{regexp.MustCompile(`/portfolio/articles/([^/.]+)`), FolderArticles}
	resumeAssets  = assetLocator{regexp.MustCompile(`/portfolio/resume/([^/.]+)`), FolderResume}

	// Record deletes for projects and articles have always matched on the
	// skills folder. Kept as-is until the intended behaviour is confirmed.
	projectDeleteAssets = assetLocator{skillAssets.match, FolderProjects}
	articleDeleteAssets = assetLocator{skillAssets.match, FolderArticles}
)

func (l assetLocator) publicID(url string) (string, bool) {
	m := l.match.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return l.folder + "/" + m[1], true
}

// resolve prefers the stored handle and falls back to parsing the URL.
func (l assetLocator) resolve(url, handle string) (string, bool) {
	if handle != "" {
		return handle, true
	}
	if url == "" {
		return "", false
	}
	return l.publicID(url)
}
