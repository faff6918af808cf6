package domain

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/common"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/mocks"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/storage"
	"github.com/tensaku-lab/backend/pkg/testutil"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

func withImageRequest(t *testing.T, ctx context.Context, mime string, width, height int) context.Context {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var data bytes.Buffer
	require.NoError(t, png.Encode(&data, img))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="sketch.png"`)
	header.Set("Content-Type", mime)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/uploadImage", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return xcontext.WithHTTPRequest(ctx, req)
}

func Test_fileDomain_UploadImage(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	cfg := xcontext.Configs(ctx)
	cfg.File.MaxDimension = 64
	ctx = xcontext.WithConfigs(ctx, cfg)

	fileStorage := &mocks.Storage{}
	fileStorage.On("Upload", mock.Anything, mock.MatchedBy(func(obj *storage.UploadObject) bool {
		if obj.Bucket != cfg.Storage.Bucket || obj.Prefix != common.ImagePrefix || obj.Mime != "image/png" {
			return false
		}

		img, err := png.Decode(bytes.NewReader(obj.Data))
		return err == nil && img.Bounds().Dx() <= 64 && img.Bounds().Dy() <= 64
	})).Return(&storage.UploadResponse{Url: "https://cdn/images/sketch.png", FileName: "sketch.png"}, nil).Once()

	domain := NewFileDomain(fileStorage, repository.NewFileRepository())

	resp, err := domain.UploadImage(withImageRequest(t, ctx, "image/png", 256, 128), &model.UploadImageRequest{})
	require.NoError(t, err)
	require.Equal(t, "https://cdn/images/sketch.png", resp.Url)

	files, err := repository.NewFileRepository().GetByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "image/png", files[0].Mime)
	require.Equal(t, resp.Url, files[0].Url)

	fileStorage.AssertExpectations(t)
}

func Test_fileDomain_UploadImage_Invalid(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	fileStorage := &mocks.Storage{}
	domain := NewFileDomain(fileStorage, repository.NewFileRepository())

	_, err := domain.UploadImage(ctx, &model.UploadImageRequest{})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = domain.UploadImage(withImageRequest(t, ctx, "application/pdf", 8, 8), &model.UploadImageRequest{})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = domain.UploadImage(
		withImageRequest(t, xcontext.WithRequestUserID(ctx, ""), "image/png", 8, 8),
		&model.UploadImageRequest{},
	)
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	fileStorage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}
