package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/logger"
	"taskboard-backend/internal/repository"
	"taskboard-backend/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const maxFilesPerUpload = 10

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".txt": true, ".zip": true, ".csv": true,
}

// Sniffed content must descend from one of these. Office formats detect as
// children of the OLE and zip containers; csv detects as a text/plain child.
var allowedMIMERoots = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/x-ole-storage",
	"application/zip",
	"text/plain",
}

// UploadedFile is one file of a multipart upload
type UploadedFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// AttachmentResponse represents an attachment in API responses
type AttachmentResponse struct {
	ID               uuid.UUID `json:"id"`
	TaskID           uuid.UUID `json:"task_id"`
	UserID           uuid.UUID `json:"user_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	Size             int64     `json:"size"`
	CreatedAt        string    `json:"created_at"`
}

// AttachmentService stores task files in blob storage and their metadata in the database
type AttachmentService struct {
	repos    *repository.Repositories
	tx       repository.TxManagerInterface
	store    storage.Storage
	maxBytes int64
}

// NewAttachmentService creates a new attachment service
func NewAttachmentService(repos *repository.Repositories, tx repository.TxManagerInterface, store storage.Storage, maxUploadMB int64) *AttachmentService {
	return &AttachmentService{
		repos:    repos,
		tx:       tx,
		store:    store,
		maxBytes: maxUploadMB << 20,
	}
}

// Upload stores files for a task. Blobs are written first; if the metadata
// transaction fails the written blobs are removed again.
func (s *AttachmentService) Upload(ctx context.Context, actor Actor, taskID uuid.UUID, files []UploadedFile) ([]AttachmentResponse, error) {
	if s.store == nil {
		return nil, apperrors.ErrStorageNotSet
	}
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("files", "must contain at least 1 item(s)")
	}
	if len(files) > maxFilesPerUpload {
		return nil, apperrors.NewValidationError("files", fmt.Sprintf("must contain at most %d item(s)", maxFilesPerUpload))
	}
	task, err := taskWithAccess(s.repos, actor, taskID)
	if err != nil {
		return nil, err
	}

	rows := make([]*models.TaskAttachment, 0, len(files))
	written := make([]string, 0, len(files))
	cleanup := func() {
		for _, key := range written {
			if err := s.store.Delete(key); err != nil {
				logger.WithContext(ctx).WithField("key", key).Warnf("failed to remove orphaned blob: %v", err)
			}
		}
	}

	for i, f := range files {
		row, err := s.storeFile(task.ID, actor.ID, i, f)
		if err != nil {
			cleanup()
			return nil, err
		}
		written = append(written, row.Path)
		rows = append(rows, row)
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		for _, row := range rows {
			if err := r.Attachments.Create(row); err != nil {
				return fmt.Errorf("failed to save attachment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		cleanup()
		return nil, err
	}

	logger.WithContext(ctx).WithEntity(models.EntityTask, task.ID).
		WithField("count", len(rows)).
		Info("attachments uploaded")

	items := make([]AttachmentResponse, len(rows))
	for i, row := range rows {
		items[i] = toAttachmentResponse(row)
	}
	return items, nil
}

// storeFile checks one file and writes it to blob storage
func (s *AttachmentService) storeFile(taskID, userID uuid.UUID, index int, f UploadedFile) (*models.TaskAttachment, error) {
	field := fmt.Sprintf("files[%d]", index)
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if !allowedExtensions[ext] {
		return nil, apperrors.NewValidationError(field, "file type is not allowed")
	}
	if f.Size > s.maxBytes {
		return nil, apperrors.NewValidationError(field, fmt.Sprintf("must be at most %d MB", s.maxBytes>>20))
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(rc, s.maxBytes+1))
	_ = rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperrors.NewValidationError(field, fmt.Sprintf("must be at most %d MB", s.maxBytes>>20))
	}

	mtype := mimetype.Detect(data)
	if !allowedMIME(mtype) {
		return nil, apperrors.NewValidationError(field, "file content type "+mtype.String()+" is not allowed")
	}

	stored := uuid.New().String() + ext
	key := fmt.Sprintf("attachments/%s/%s", taskID, stored)
	size, err := s.store.Put(key, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	return &models.TaskAttachment{
		TaskID:           taskID,
		UserID:           userID,
		Filename:         stored,
		OriginalFilename: filepath.Base(f.Filename),
		MimeType:         mtype.String(),
		Size:             size,
		Disk:             s.store.Disk(),
		Path:             key,
	}, nil
}

func allowedMIME(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		for _, root := range allowedMIMERoots {
			if m.Is(root) {
				return true
			}
		}
	}
	return false
}

// ListByTask returns the attachments of a task
func (s *AttachmentService) ListByTask(ctx context.Context, actor Actor, taskID uuid.UUID) ([]AttachmentResponse, error) {
	if _, err := taskWithAccess(s.repos, actor, taskID); err != nil {
		return nil, err
	}
	rows, err := s.repos.Attachments.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	items := make([]AttachmentResponse, len(rows))
	for i := range rows {
		items[i] = toAttachmentResponse(&rows[i])
	}
	return items, nil
}

// Download returns attachment metadata and a reader over its bytes. The
// caller closes the reader.
func (s *AttachmentService) Download(ctx context.Context, actor Actor, attachmentID uuid.UUID) (*AttachmentResponse, io.ReadCloser, error) {
	if s.store == nil {
		return nil, nil, apperrors.ErrStorageNotSet
	}
	row, err := s.load(attachmentID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := taskWithAccess(s.repos, actor, row.TaskID); err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(row.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attachment: %w", err)
	}
	resp := toAttachmentResponse(row)
	return &resp, rc, nil
}

// Delete removes an attachment row and its blob. Allowed for the uploader or
// any member of the task's project.
func (s *AttachmentService) Delete(ctx context.Context, actor Actor, attachmentID uuid.UUID) error {
	row, err := s.load(attachmentID)
	if err != nil {
		return err
	}
	if row.UserID != actor.ID {
		if _, err := taskWithAccess(s.repos, actor, row.TaskID); err != nil {
			if apperrors.IsAuthorization(err) {
				return apperrors.ErrAttachmentDeleteDenied
			}
			return err
		}
	}

	if err := s.repos.Attachments.Delete(row.ID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if s.store != nil {
		if err := s.store.Delete(row.Path); err != nil {
			logger.WithContext(ctx).WithField("key", row.Path).Warnf("failed to remove blob: %v", err)
		}
	}
	return nil
}

func (s *AttachmentService) load(attachmentID uuid.UUID) (*models.TaskAttachment, error) {
	row, err := s.repos.Attachments.GetByID(attachmentID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return row, nil
}

func toAttachmentResponse(a *models.TaskAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:               a.ID,
		TaskID:           a.TaskID,
		UserID:           a.UserID,
		Filename:         a.Filename,
		OriginalFilename: a.OriginalFilename,
		MimeType:         a.MimeType,
		Size:             a.Size,
		CreatedAt:        formatTime(a.CreatedAt),
	}
}
