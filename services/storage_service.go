package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	appConfig "github.com/gino-rizzo/ginos-pizza-api/config"
)

// StoredFile describes one archived PDF
type StoredFile struct {
	ID         string
	Name       string
	ModifiedAt time.Time
}

// StorageInterface is the PDF archival store. The watcher keeps one file
// per order and moves it between the incoming and customer-updating folders
// as the order's update-status flag flips. A file vanishing underneath a
// move (deleted by hand, 404) is tolerated: Find reports absence with a nil
// StoredFile and the watcher regenerates.
type StorageInterface interface {
	Upload(ctx context.Context, folder, name string, content []byte) (string, error)
	Move(ctx context.Context, fileID, fromFolder, toFolder string) error
	Find(ctx context.Context, folder, name string) (*StoredFile, error)
	Delete(ctx context.Context, fileID string) error
}

var storageServiceInstance StorageInterface

// InitStorageService builds the configured storage backend (drive or s3)
func InitStorageService(ctx context.Context) (StorageInterface, error) {
	cfg := appConfig.GetConfig()

	var (
		svc StorageInterface
		err error
	)
	switch cfg.StorageBackend {
	case "s3":
		svc, err = newS3StorageService(ctx, cfg)
	default:
		svc, err = newDriveStorageService(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	storageServiceInstance = svc
	return svc, nil
}

// GetStorageService returns the initialized storage service instance
func GetStorageService() StorageInterface {
	return storageServiceInstance
}

// SetStorageService sets the storage service instance (primarily for testing)
func SetStorageService(s StorageInterface) {
	storageServiceInstance = s
}

// DriveStorageService stores PDFs in Google Drive folders
type DriveStorageService struct {
	svc *drive.Service
}

func newDriveStorageService(ctx context.Context, cfg *appConfig.Config) (*DriveStorageService, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(cfg.GoogleCredentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return &DriveStorageService{svc: svc}, nil
}

// Upload creates a PDF file inside the given folder and returns its file ID
func (d *DriveStorageService) Upload(ctx context.Context, folder, name string, content []byte) (string, error) {
	file := &drive.File{
		Name:     name,
		Parents:  []string{folder},
		MimeType: "application/pdf",
	}
	created, err := d.svc.Files.Create(file).
		Media(bytes.NewReader(content)).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return created.Id, nil
}

// Move reparents a file from one folder to another
func (d *DriveStorageService) Move(ctx context.Context, fileID, fromFolder, toFolder string) error {
	_, err := d.svc.Files.Update(fileID, nil).
		AddParents(toFolder).
		RemoveParents(fromFolder).
		Context(ctx).Do()
	if err != nil {
		if isDriveNotFound(err) {
			// Someone deleted the file out from under us; the watcher will
			// regenerate on its next sweep.
			return nil
		}
		return fmt.Errorf("failed to move file %s: %w", fileID, err)
	}
	return nil
}

// Find locates a file by name inside a folder; nil means not present
func (d *DriveStorageService) Find(ctx context.Context, folder, name string) (*StoredFile, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", name, folder)
	list, err := d.svc.Files.List().
		Q(query).
		Fields("files(id, name, modifiedTime)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		if isDriveNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search for %s: %w", name, err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}

	f := list.Files[0]
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return &StoredFile{ID: f.Id, Name: f.Name, ModifiedAt: modified}, nil
}

// Delete removes a file; a 404 is not an error
func (d *DriveStorageService) Delete(ctx context.Context, fileID string) error {
	if err := d.svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		if isDriveNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}
	return nil
}

func isDriveNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 404
}
