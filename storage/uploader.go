package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/gosimple/slug"
)

// ContentTypePNG is the content type of rendered table QR images.
const ContentTypePNG = "image/png"

// UploadResult locates a stored object.
type UploadResult struct {
	Key      string
	Location string
}

// FileUploader is the public object store holding table QR images. Delete is
// used to drop an image whose table row could not be updated.
type FileUploader interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// TableQRKey builds the object key of a table QR image. The table name is
// slugged for readability; the id keeps keys unique.
func TableQRKey(shopID, tableID, tableName string) string {
	name := slug.Make(tableName)
	if name == "" {
		name = "table"
	}
	return fmt.Sprintf("shops/%s/tables/%s-%s.png", shopID, name, tableID)
}

// PublicURL joins key onto base.
func PublicURL(base *url.URL, key string) string {
	if base == nil || key == "" {
		return ""
	}
	joined := *base
	joined.Path = path.Join("/", base.Path, key)
	return joined.String()
}
