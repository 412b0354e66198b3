package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stantpm/propflow/internal/common"
	"github.com/stantpm/propflow/internal/service"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const sheetMimeType = "application/vnd.google-apps.spreadsheet"

// Converter implements the FileConverter interface on top of Google Drive:
// XLSX exports are converted to native spreadsheets by copying them with the
// spreadsheet MIME type.
type Converter struct {
	service *drive.Service
	logger  *slog.Logger
	retry   service.RetryOptions
}

// NewConverter creates a new Drive-backed file converter.
func NewConverter(ctx context.Context, config Config, logger *slog.Logger) (*Converter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient, err := createHTTPClient(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &Converter{
		service: srv,
		logger:  logger,
		retry: service.RetryOptions{
			MaxAttempts:  config.RetryAttempts,
			InitialDelay: config.RetryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// ConvertToSheet implements FileConverter.
func (c *Converter) ConvertToSheet(ctx context.Context, fileID string) (string, error) {
	var converted *drive.File
	err := common.WithRetry(ctx, func() error {
		src, err := c.service.Files.Get(fileID).Fields("name", "parents").Context(ctx).Do()
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(strings.TrimSuffix(src.Name, ".xlsx"), ".xls")
		dst := &drive.File{
			Name:     name,
			MimeType: sheetMimeType,
			Parents:  src.Parents,
		}

		converted, err = c.service.Files.Copy(fileID, dst).Context(ctx).Do()
		return err
	}, c.retry)
	if err != nil {
		return "", fmt.Errorf("failed to convert file %s to a sheet: %w", fileID, err)
	}

	c.logger.Info("converted file to spreadsheet", "source", fileID, "sheet", converted.Id)
	return converted.Id, nil
}

// Delete implements FileConverter.
func (c *Converter) Delete(ctx context.Context, fileID string) error {
	err := common.WithRetry(ctx, func() error {
		return c.service.Files.Delete(fileID).Context(ctx).Do()
	}, c.retry)
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}
	return nil
}

// ParentFolder implements FileConverter.
func (c *Converter) ParentFolder(ctx context.Context, fileID string) (string, error) {
	var parent string
	err := common.WithRetry(ctx, func() error {
		f, err := c.service.Files.Get(fileID).Fields("parents").Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(f.Parents) == 0 {
			return &common.RetryableError{Err: fmt.Errorf("file %s has no parent folder", fileID), Retryable: false}
		}
		parent = f.Parents[0]
		return nil
	}, c.retry)
	if err != nil {
		return "", err
	}
	return parent, nil
}

// MoveToFolder implements FileConverter.
func (c *Converter) MoveToFolder(ctx context.Context, fileID, folderID string) error {
	err := common.WithRetry(ctx, func() error {
		f, err := c.service.Files.Get(fileID).Fields("parents").Context(ctx).Do()
		if err != nil {
			return err
		}

		update := c.service.Files.Update(fileID, nil).AddParents(folderID)
		if len(f.Parents) > 0 {
			update = update.RemoveParents(strings.Join(f.Parents, ","))
		}
		_, err = update.Context(ctx).Do()
		return err
	}, c.retry)
	if err != nil {
		return fmt.Errorf("failed to move file %s to folder %s: %w", fileID, folderID, err)
	}
	return nil
}
