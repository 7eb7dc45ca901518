package network

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
)

type slicedUploader struct {
	uploader *manager.Uploader
	content  ContentOptions
}

func newSlicedUploader(client manager.UploadAPIClient, config SlicedConfig, content ContentOptions) *slicedUploader {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if config.PartSize > 0 {
			u.PartSize = config.PartSize
		}
		if config.Concurrency > 0 {
			u.Concurrency = config.Concurrency
		}
		u.LeavePartsOnError = config.LeavePartsOnError
	})
	return &slicedUploader{uploader: uploader, content: content}
}

func (u *slicedUploader) Variant() Variant {
	return SlicedUpload
}

func (u *slicedUploader) Upload(ctx context.Context, req Request) (Result, error) {
	body, err := openBody(req.LocalPath, u.content)
	if err != nil {
		return Result{}, newTransportError(SlicedUpload, req, err)
	}
	defer body.Close() //nolint:errcheck

	out, err := u.uploader.Upload(ctx, putObjectInput(req, body, u.content), func(m *manager.Uploader) {
		m.ClientOptions = append(m.ClientOptions, withRegion(req.Region))
	})
	if err != nil {
		return Result{}, newTransportError(SlicedUpload, req, err)
	}

	return Result{
		Variant:   SlicedUpload,
		Key:       req.Key,
		LocalPath: req.LocalPath,
		Size:      body.size,
		ETag:      aws.ToString(out.ETag),
		VersionID: aws.ToString(out.VersionID),
		Location:  out.Location,
	}, nil
}
