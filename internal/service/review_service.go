package service

import (
	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"

	"go.uber.org/zap"
)

type ReviewService struct {
	ReviewRepo     *repository.ReviewRepository
	TrackRepo      *repository.TrackRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
	Notifications  *NotificationService
	logger         *zap.Logger
}

func NewReviewService(
	reviewRepo *repository.ReviewRepository,
	trackRepo *repository.TrackRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
	notifications *NotificationService,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		ReviewRepo:     reviewRepo,
		TrackRepo:      trackRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
		Notifications:  notifications,
		logger:         logger,
	}
}

// Create 报名用户对课程评价一次，评分1-5
// 创建后重新聚合课程评分并通知创作者
func (s *ReviewService) Create(userID, trackID uint, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, util.ErrInvalidRating
	}

	track, err := s.TrackRepo.FindByID(trackID)
	if err != nil {
		return nil, util.ErrTrackNotFound
	}
	if _, err := s.EnrollmentRepo.FindByUserAndTrack(userID, trackID); err != nil {
		return nil, util.ErrNotEnrolled
	}
	if _, err := s.ReviewRepo.FindByTrackAndUser(trackID, userID); err == nil {
		return nil, util.ErrAlreadyReviewed
	}

	review := &model.Review{
		TrackID: trackID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.ReviewRepo.Create(review); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, util.ErrAlreadyReviewed
		}
		return nil, err
	}

	s.refreshRating(trackID)

	if s.Notifications != nil {
		reviewerName := "一位学员"
		if reviewer, err := s.UserRepo.FindByID(userID); err == nil {
			reviewerName = reviewer.Name
		}
		s.Notifications.Notify(track.CreatorID, model.NotifyReview,
			"收到新评价",
			reviewerName+" 评价了你的课程《"+track.Title+"》",
			map[string]interface{}{"trackId": trackID, "reviewId": review.ID, "rating": rating})
	}
	return review, nil
}

// Delete 作者本人或管理员可删除评价，删除后重新聚合评分
func (s *ReviewService) Delete(userID uint, role model.UserRole, reviewID uint) error {
	review, err := s.ReviewRepo.FindByID(reviewID)
	if err != nil {
		return util.ErrReviewNotFound
	}
	if review.UserID != userID && role != model.RoleAdmin {
		return util.ErrPermissionDenied
	}
	if err := s.ReviewRepo.Delete(reviewID); err != nil {
		return err
	}
	s.refreshRating(review.TrackID)
	return nil
}

func (s *ReviewService) ListByTrack(trackID uint, page, limit int) ([]model.Review, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ReviewRepo.ListByTrack(trackID, page, limit)
}

func (s *ReviewService) refreshRating(trackID uint) {
	avg, count, err := s.ReviewRepo.Aggregate(trackID)
	if err != nil {
		s.logger.Warn("聚合课程评分失败", zap.Uint("trackId", trackID), zap.Error(err))
		return
	}
	if err := s.TrackRepo.UpdateRating(trackID, avg, count); err != nil {
		s.logger.Warn("更新课程评分失败", zap.Uint("trackId", trackID), zap.Error(err))
	}
}
