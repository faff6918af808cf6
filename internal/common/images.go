package common

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"github.com/nfnt/resize"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/storage"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

const ImagePrefix = "images"

// ProcessImage reads the multipart image at key, shrinks it to fit the
// configured dimension and uploads it. It returns the upload and the mime type
// of the image.
func ProcessImage(
	ctx context.Context, fileStorage storage.Storage, key string,
) (*storage.UploadResponse, string, error) {
	cfg := xcontext.Configs(ctx)
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return nil, "", errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	req.Body = http.MaxBytesReader(nil, req.Body, int64(cfg.File.MaxSize)+1024*1024)
	if err := req.ParseMultipartForm(int64(cfg.File.MaxSize)); err != nil {
		return nil, "", errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	file, header, err := req.FormFile(key)
	if err != nil {
		return nil, "", errorx.New(errorx.BadRequest, "Error retrieving the file")
	}
	defer file.Close()

	if header.Size > int64(cfg.File.MaxSize) {
		return nil, "", errorx.New(errorx.BadRequest, "File too large, max %d bytes", cfg.File.MaxSize)
	}

	mime := header.Header.Get("Content-Type")
	img, err := decodeImg(mime, file)
	if err != nil {
		return nil, "", errorx.New(errorx.BadRequest, "Invalid image: %v", err)
	}

	img = resize.Thumbnail(cfg.File.MaxDimension, cfg.File.MaxDimension, img, resize.Lanczos2)
	b, err := encodeImg(mime, img)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode image: %v", err)
		return nil, "", errorx.Unknown
	}

	resp, err := fileStorage.Upload(ctx, &storage.UploadObject{
		Bucket:   cfg.Storage.Bucket,
		Prefix:   ImagePrefix,
		FileName: header.Filename,
		Mime:     mime,
		Data:     b,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload image: %v", err)
		return nil, "", errorx.Unknown
	}

	return resp, mime, nil
}

func decodeImg(mime string, data io.Reader) (img image.Image, err error) {
	switch mime {
	case "image/jpeg":
		img, err = jpeg.Decode(data)
	case "image/png":
		img, err = png.Decode(data)
	case "image/gif":
		img, err = gif.Decode(data)
	default:
		return nil, fmt.Errorf("only jpeg, gif or png is accepted")
	}
	return img, err
}

func encodeImg(mime string, img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)

	var err error
	switch mime {
	case "image/jpeg":
		err = jpeg.Encode(buf, img, nil)
	case "image/png":
		err = png.Encode(buf, img)
	case "image/gif":
		err = gif.Encode(buf, img, nil)
	default:
		return nil, fmt.Errorf("only jpeg, gif or png is accepted")
	}
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
