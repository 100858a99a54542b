package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountBanned       = errors.New("account banned")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrTrackNotFound       = errors.New("track not found")
	ErrTrackNotPublished   = errors.New("track not published")
	ErrModuleNotFound      = errors.New("module not found")
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this track")
	ErrNotEnrolled         = errors.New("not enrolled in this track")
	ErrAlreadyReviewed     = errors.New("track already reviewed")
	ErrReviewNotFound      = errors.New("review not found")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrQuestionTooShort    = errors.New("question is too short")
	ErrDiscussionNotFound  = errors.New("discussion not found")
	ErrEmptyContent        = errors.New("content cannot be empty")
	ErrInvitationNotFound  = errors.New("invitation code not found")
	ErrInvitationUsed      = errors.New("invitation code already used")
	ErrInvitationExpired   = errors.New("invitation code expired")
	ErrAIUnavailable       = errors.New("AI answer unavailable")
	ErrModuleOrderConflict = errors.New("module order already taken")
)
