package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/net/context"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
	platformS3 "github.com/jhlee0409/sidedish-sub001/platform/s3"
)

const (
	fieldImage = "image"

	uploadFlakeNamespace = "uploads"
	uploadMaxBytes       = 5 << 20
)

type imageFormat struct {
	contentType string
	ext         string
	magic       []byte
	offset      int
}

// Formats accepted for image upload, matched on magic numbers instead of the
// client-provided content type.
var imageFormats = []imageFormat{
	{contentType: "image/png", ext: "png", magic: []byte("\x89PNG\r\n\x1a\n")},
	{contentType: "image/jpeg", ext: "jpg", magic: []byte("\xff\xd8\xff")},
	{contentType: "image/gif", ext: "gif", magic: []byte("GIF8")},
	{contentType: "image/webp", ext: "webp", magic: []byte("WEBP"), offset: 8},
}

// ImageUpload stores the image in blob storage and returns its public URL.
func ImageUpload(api platformS3.API, bucket, region string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		err := r.ParseMultipartForm(uploadMaxBytes)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		f, _, err := r.FormFile(fieldImage)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, "image field missing"))
			return
		}
		defer f.Close()

		raw, err := io.ReadAll(io.LimitReader(f, uploadMaxBytes+1))
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		if len(raw) > uploadMaxBytes {
			respondError(w, 5011, wrapError(ErrBadRequest, "image exceeds 5MB"))
			return
		}

		format, ok := sniffImage(raw)
		if !ok {
			respondError(w, 0, wrapError(ErrBadRequest, "unsupported image format"))
			return
		}

		id, err := flake.NextID(uploadFlakeNamespace)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		url, err := platformS3.PutObject(
			api,
			bucket,
			region,
			uploadKey(id, format.ext),
			format.contentType,
			raw,
		)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadImage{
			contentType: format.contentType,
			size:        len(raw),
			url:         url,
		})
	}
}

type payloadImage struct {
	contentType string
	size        int
	url         string
}

func (p *payloadImage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ContentType string `json:"content_type"`
		Size        int    `json:"size"`
		URL         string `json:"url"`
	}{
		ContentType: p.contentType,
		Size:        p.size,
		URL:         p.url,
	})
}

func sniffImage(raw []byte) (imageFormat, bool) {
	for _, f := range imageFormats {
		if len(raw) < f.offset+len(f.magic) {
			continue
		}

		if bytes.Equal(raw[f.offset:f.offset+len(f.magic)], f.magic) {
			return f, true
		}
	}

	return imageFormat{}, false
}

func uploadKey(id uint64, ext string) string {
	return "images/" + strconv.FormatUint(id, 10) + "." + ext
}
