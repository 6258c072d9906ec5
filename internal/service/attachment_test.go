package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/service"
	"taskboard-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// AttachmentServiceTestSuite defines the test suite for AttachmentService
type AttachmentServiceTestSuite struct {
	suite.Suite
	ctrl              *gomock.Controller
	m                 *repoMocks
	fs                afero.Fs
	store             *trackingStore
	attachmentService *service.AttachmentService
	ctx               context.Context
	actor             service.Actor
	project           *models.Project
	task              *models.Task
}

// SetupTest sets up the test suite
func (suite *AttachmentServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.m = newRepoMocks(suite.ctrl)
	suite.fs = afero.NewMemMapFs()
	suite.store = &trackingStore{Storage: storage.NewFileStorage(suite.fs), live: map[string]bool{}}
	suite.attachmentService = service.NewAttachmentService(suite.m.repos(), suite.m.Tx, suite.store, 1)
	suite.ctx = context.Background()
	suite.actor = newActor()
	suite.project = newProject(uuid.New(), uuid.New())
	suite.task = newTask(suite.project.ID, models.TaskStatusPending, 0)
}

// TearDownTest cleans up after each test
func (suite *AttachmentServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *AttachmentServiceTestSuite) expectTaskAccess() {
	suite.m.Tasks.EXPECT().GetByID(suite.task.ID).Return(suite.task, nil)
	suite.m.Projects.EXPECT().GetByID(suite.project.ID).Return(suite.project, nil)
	suite.m.memberOfTeam(suite.project.TeamID, suite.actor.ID, models.TeamRoleMember)
	suite.m.memberOfProject(suite.project.ID, suite.actor.ID, models.ProjectRoleMember)
}

func upload(name string, content []byte) service.UploadedFile {
	return service.UploadedFile{
		Filename: name,
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// trackingStore records which keys currently hold a blob
type trackingStore struct {
	storage.Storage
	live map[string]bool
}

func (t *trackingStore) Put(key string, r io.Reader) (int64, error) {
	n, err := t.Storage.Put(key, r)
	if err == nil {
		t.live[key] = true
	}
	return n, err
}

func (t *trackingStore) Delete(key string) error {
	delete(t.live, key)
	return t.Storage.Delete(key)
}

func (suite *AttachmentServiceTestSuite) blobCount() int {
	return len(suite.store.live)
}

func (suite *AttachmentServiceTestSuite) TestUpload_StoresBlobAndRow() {
	suite.expectTaskAccess()
	suite.m.expectTx()
	suite.m.Attachments.EXPECT().Create(gomock.Any()).DoAndReturn(func(a *models.TaskAttachment) error {
		suite.Equal(suite.task.ID, a.TaskID)
		suite.Equal(suite.actor.ID, a.UserID)
		suite.Equal("notes.txt", a.OriginalFilename)
		suite.Equal(storage.DiskLocal, a.Disk)
		return nil
	})

	items, err := suite.attachmentService.Upload(suite.ctx, suite.actor, suite.task.ID,
		[]service.UploadedFile{upload("notes.txt", []byte("meeting notes\n"))})

	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Contains(items[0].MimeType, "text/plain")
	suite.Equal(int64(14), items[0].Size)
	suite.Equal(1, suite.blobCount())
}

func (suite *AttachmentServiceTestSuite) TestUpload_Rejections() {
	testCases := []struct {
		name  string
		files []service.UploadedFile
	}{
		{name: "disallowed extension", files: []service.UploadedFile{upload("run.exe", []byte("MZ"))}},
		{name: "content does not match", files: []service.UploadedFile{upload("fake.txt", append([]byte("\x7fELF\x02\x01\x01"), make([]byte, 64)...))}},
		{name: "too large", files: []service.UploadedFile{upload("big.txt", bytes.Repeat([]byte("a"), 1<<20+1))}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.expectTaskAccess()

			_, err := suite.attachmentService.Upload(suite.ctx, suite.actor, suite.task.ID, tc.files)

			suite.True(apperrors.IsValidation(err))
			suite.Equal(0, suite.blobCount())
		})
	}
}

func (suite *AttachmentServiceTestSuite) TestUpload_FileCount() {
	_, err := suite.attachmentService.Upload(suite.ctx, suite.actor, suite.task.ID, nil)
	suite.True(apperrors.IsValidation(err))

	many := make([]service.UploadedFile, 11)
	for i := range many {
		many[i] = upload("a.txt", []byte("x"))
	}
	_, err = suite.attachmentService.Upload(suite.ctx, suite.actor, suite.task.ID, many)
	suite.True(apperrors.IsValidation(err))
}

func (suite *AttachmentServiceTestSuite) TestUpload_RemovesBlobsWhenMetadataFails() {
	suite.expectTaskAccess()
	suite.m.expectTx()
	suite.m.Attachments.EXPECT().Create(gomock.Any()).Return(nil)
	suite.m.Attachments.EXPECT().Create(gomock.Any()).Return(errors.New("insert failed"))

	_, err := suite.attachmentService.Upload(suite.ctx, suite.actor, suite.task.ID, []service.UploadedFile{
		upload("a.txt", []byte("first")),
		upload("b.csv", []byte("id,name\n1,x\n")),
	})

	suite.Error(err)
	suite.Equal(0, suite.blobCount())
}

func (suite *AttachmentServiceTestSuite) TestUpload_WithoutStorage() {
	svc := service.NewAttachmentService(suite.m.repos(), suite.m.Tx, nil, 1)

	_, err := svc.Upload(suite.ctx, suite.actor, suite.task.ID, []service.UploadedFile{upload("a.txt", []byte("x"))})

	suite.True(apperrors.IsConfiguration(err))
}

func (suite *AttachmentServiceTestSuite) TestDelete_OtherUserWithoutAccess() {
	row := &models.TaskAttachment{BaseModel: models.BaseModel{ID: uuid.New()}, TaskID: suite.task.ID, UserID: uuid.New(), Path: "attachments/x"}
	suite.m.Attachments.EXPECT().GetByID(row.ID).Return(row, nil)
	suite.m.Tasks.EXPECT().GetByID(suite.task.ID).Return(suite.task, nil)
	suite.m.Projects.EXPECT().GetByID(suite.project.ID).Return(suite.project, nil)
	suite.m.memberOfTeam(suite.project.TeamID, suite.actor.ID, models.TeamRoleMember)
	suite.m.notMemberOfProject(suite.project.ID, suite.actor.ID)

	err := suite.attachmentService.Delete(suite.ctx, suite.actor, row.ID)

	suite.ErrorIs(err, apperrors.ErrAttachmentDeleteDenied)
}

func (suite *AttachmentServiceTestSuite) TestDownload() {
	_, err := suite.store.Put("attachments/t/file.txt", bytes.NewReader([]byte("payload")))
	suite.Require().NoError(err)
	row := &models.TaskAttachment{BaseModel: models.BaseModel{ID: uuid.New()}, TaskID: suite.task.ID, UserID: suite.actor.ID, Path: "attachments/t/file.txt"}
	suite.m.Attachments.EXPECT().GetByID(row.ID).Return(row, nil)
	suite.expectTaskAccess()

	meta, rc, err := suite.attachmentService.Download(suite.ctx, suite.actor, row.ID)

	suite.Require().NoError(err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	suite.Require().NoError(err)
	suite.Equal("payload", string(data))
	suite.Equal(row.ID, meta.ID)
}

// TestAttachmentServiceTestSuite runs the test suite
func TestAttachmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentServiceTestSuite))
}
