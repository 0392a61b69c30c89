package uploader

import (
	"context"
	"fmt"

	"visualdna/internal/infra"
)

// New selects and constructs the upload backend named by the configuration.
func New(ctx context.Context, cfg *infra.Config) (Backend, error) {
	switch cfg.UploadBackend {
	case "smms":
		return NewSMMS(SMMSOptions{}), nil
	case "imgbb":
		return NewImgBB(ImgBBOptions{APIKey: cfg.ImgBBAPIKey})
	case "oss":
		return NewOSS(ctx, OSSOptions{
			Endpoint:  cfg.OSSEndpoint,
			AccessKey: cfg.OSSAccessKey,
			SecretKey: cfg.OSSSecretKey,
			Bucket:    cfg.OSSBucket,
			Namespace: cfg.OSSNamespace,
			BaseURL:   cfg.OSSBaseURL,
			UseSSL:    cfg.OSSUseSSL,
		})
	case "selfhost":
		return NewSelfHost(SelfHostOptions{BaseURL: cfg.ImageHostURL})
	default:
		return nil, fmt.Errorf("uploader: unknown upload backend %q", cfg.UploadBackend)
	}
}
