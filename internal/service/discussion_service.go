package service

import (
	"context"
	"io"
	"strings"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"
)

type DiscussionService struct {
	DiscussionRepo *repository.DiscussionRepository
	TrackRepo      *repository.TrackRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
	Notifications  *NotificationService
	Storage        *StorageService
}

func NewDiscussionService(
	discussionRepo *repository.DiscussionRepository,
	trackRepo *repository.TrackRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
	notifications *NotificationService,
	storage *StorageService,
) *DiscussionService {
	return &DiscussionService{
		DiscussionRepo: discussionRepo,
		TrackRepo:      trackRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
		Notifications:  notifications,
		Storage:        storage,
	}
}

type DiscussionInput struct {
	ModuleID *uint
	ParentID *uint
	Content  string
}

// Create 发表讨论或回复。回复必须引用同一课程下的顶层讨论，
// 回复成功后通知父条目作者
func (s *DiscussionService) Create(userID, trackID uint, input DiscussionInput) (*model.Discussion, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, util.ErrEmptyContent
	}

	track, err := s.TrackRepo.FindByID(trackID)
	if err != nil {
		return nil, util.ErrTrackNotFound
	}
	if _, err := s.EnrollmentRepo.FindByUserAndTrack(userID, trackID); err != nil {
		if track.CreatorID != userID {
			return nil, util.ErrNotEnrolled
		}
	}

	var parent *model.Discussion
	if input.ParentID != nil {
		parent, err = s.DiscussionRepo.FindByID(*input.ParentID)
		if err != nil || parent.TrackID != trackID {
			return nil, util.ErrDiscussionNotFound
		}
		if parent.ParentID != nil {
			// 只支持一层回复，深层回复挂到顶层条目
			input.ParentID = parent.ParentID
		}
	}

	discussion := &model.Discussion{
		TrackID:  trackID,
		ModuleID: input.ModuleID,
		UserID:   userID,
		ParentID: input.ParentID,
		Content:  content,
	}
	if err := s.DiscussionRepo.Create(discussion); err != nil {
		return nil, err
	}

	if parent != nil && parent.UserID != userID && s.Notifications != nil {
		authorName := "有人"
		if author, err := s.UserRepo.FindByID(userID); err == nil {
			authorName = author.Name
		}
		s.Notifications.Notify(parent.UserID, model.NotifyReply,
			"收到新回复",
			authorName+" 回复了你在《"+track.Title+"》下的讨论",
			map[string]interface{}{"trackId": trackID, "discussionId": discussion.ID})
	}
	return discussion, nil
}

// UploadAttachment 上传讨论附件，返回可访问的URL
func (s *DiscussionService) UploadAttachment(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	key := ObjectKey("attachments", filename)
	return s.Storage.Upload(ctx, key, reader, size, contentType)
}

// DiscussionThread 顶层讨论及其回复
type DiscussionThread struct {
	Discussion model.Discussion   `json:"discussion"`
	Replies    []model.Discussion `json:"replies"`
}

// ListByTrack 分页返回课程下的顶层讨论，每条附带全部回复
func (s *DiscussionService) ListByTrack(trackID uint, page, limit int) ([]DiscussionThread, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	topLevel, total, err := s.DiscussionRepo.ListByTrack(trackID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	threads := make([]DiscussionThread, 0, len(topLevel))
	for _, discussion := range topLevel {
		replies, err := s.DiscussionRepo.ListReplies(discussion.ID)
		if err != nil {
			return nil, 0, err
		}
		threads = append(threads, DiscussionThread{Discussion: discussion, Replies: replies})
	}
	return threads, total, nil
}

// Update 编辑讨论内容，仅作者本人可编辑
func (s *DiscussionService) Update(userID uint, discussionID uint, content string) (*model.Discussion, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.ErrEmptyContent
	}

	discussion, err := s.DiscussionRepo.FindByID(discussionID)
	if err != nil {
		return nil, util.ErrDiscussionNotFound
	}
	if discussion.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	discussion.Content = content
	if err := s.DiscussionRepo.Update(discussion); err != nil {
		return nil, err
	}
	return discussion, nil
}

// Delete 作者本人或管理员可删除
func (s *DiscussionService) Delete(userID uint, role model.UserRole, discussionID uint) error {
	discussion, err := s.DiscussionRepo.FindByID(discussionID)
	if err != nil {
		return util.ErrDiscussionNotFound
	}
	if discussion.UserID != userID && role != model.RoleAdmin {
		return util.ErrPermissionDenied
	}
	return s.DiscussionRepo.Delete(discussionID)
}
