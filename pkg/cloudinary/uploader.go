package cloudinary

import (
	"bytes"
	"context"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// New reads CLOUDINARY_URL from the environment when url is empty.
func New(url string) (*cld.Cloudinary, error) {
	if url == "" {
		return cld.New()
	}
	return cld.NewFromURL(url)
}

type Uploader struct {
	cld *cld.Cloudinary
}

func NewUploader(cloud *cld.Cloudinary) *Uploader {
	return &Uploader{cld: cloud}
}

func (u *Uploader) UploadBytes(ctx context.Context, folder string, filename string, b []byte) (string, error) {
	res, err := u.cld.Upload.Upload(
		ctx,
		bytes.NewReader(b),
		uploader.UploadParams{
			Folder:       folder,
			PublicID:     filename,
			ResourceType: "image",
		},
	)
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}
