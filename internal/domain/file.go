package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/tensaku-lab/backend/internal/common"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/storage"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

type FileDomain interface {
	UploadImage(context.Context, *model.UploadImageRequest) (*model.UploadImageResponse, error)
}

type fileDomain struct {
	storage  storage.Storage
	fileRepo repository.FileRepository
}

func NewFileDomain(storage storage.Storage, fileRepo repository.FileRepository) *fileDomain {
	return &fileDomain{storage: storage, fileRepo: fileRepo}
}

func (d *fileDomain) UploadImage(
	ctx context.Context, req *model.UploadImageRequest,
) (*model.UploadImageResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, mime, err := common.ProcessImage(ctx, d.storage, "image")
	if err != nil {
		return nil, err
	}

	err = d.fileRepo.Create(ctx, &entity.File{
		Base:      entity.Base{ID: uuid.NewString()},
		Mime:      mime,
		Name:      resp.FileName,
		CreatedBy: userID,
		Url:       resp.Url,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create file: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UploadImageResponse{Url: resp.Url}, nil
}
