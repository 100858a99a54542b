package service

import (
	"testing"

	"learnx_backend/internal/model"
	"learnx_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTrackService(e *testEnv) *TrackService {
	return NewTrackService(e.tracks, e.modules, e.enrollments, e.gamification, nil, zap.NewNop())
}

func TestTrackAuthoring(t *testing.T) {
	e := newTestEnv(t)
	svc := newTrackService(e)

	creator := e.createUser(t, "creator", model.RoleCreator)
	stranger := e.createUser(t, "stranger", model.RoleCreator)
	admin := e.createUser(t, "admin", model.RoleAdmin)

	track, err := svc.Create(creator.ID, TrackInput{Title: "  Rust入门  ", Description: "所有权", Category: "systems"})
	require.NoError(t, err)
	assert.Equal(t, "Rust入门", track.Title)
	assert.False(t, track.IsPublished)

	t.Run("only owner or admin may update", func(t *testing.T) {
		_, err := svc.Update(stranger.ID, model.RoleCreator, track.ID, TrackInput{Title: "劫持"})
		assert.ErrorIs(t, err, util.ErrPermissionDenied)

		updated, err := svc.Update(creator.ID, model.RoleCreator, track.ID, TrackInput{Description: "所有权与借用"})
		require.NoError(t, err)
		assert.Equal(t, "Rust入门", updated.Title)
		assert.Equal(t, "所有权与借用", updated.Description)

		_, err = svc.Update(admin.ID, model.RoleAdmin, track.ID, TrackInput{Category: "language"})
		assert.NoError(t, err)
	})

	t.Run("unpublished track hidden from others", func(t *testing.T) {
		_, err := svc.Get(track.ID, stranger.ID, model.RoleCreator)
		assert.ErrorIs(t, err, util.ErrTrackNotFound)

		got, err := svc.Get(track.ID, creator.ID, model.RoleCreator)
		require.NoError(t, err)
		assert.Equal(t, track.ID, got.ID)

		_, err = svc.Get(track.ID, admin.ID, model.RoleAdmin)
		assert.NoError(t, err)
	})

	t.Run("publish makes the track listable", func(t *testing.T) {
		listed, total, err := svc.List(1, 20, "", "")
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, listed)

		_, err = svc.SetPublished(creator.ID, model.RoleCreator, track.ID, true)
		require.NoError(t, err)

		listed, total, err = svc.List(1, 20, "", "")
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, listed, 1)
		assert.Equal(t, track.ID, listed[0].ID)

		_, err = svc.Get(track.ID, stranger.ID, model.RoleCreator)
		assert.NoError(t, err)
	})

	t.Run("category filter and title search", func(t *testing.T) {
		other, err := svc.Create(creator.ID, TrackInput{Title: "SQL优化", Category: "database"})
		require.NoError(t, err)
		_, err = svc.SetPublished(creator.ID, model.RoleCreator, other.ID, true)
		require.NoError(t, err)

		listed, _, err := svc.List(1, 20, "database", "")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, other.ID, listed[0].ID)

		listed, _, err = svc.List(1, 20, "", "Rust")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, track.ID, listed[0].ID)
	})

	t.Run("delete requires ownership", func(t *testing.T) {
		victim, err := svc.Create(creator.ID, TrackInput{Title: "待删除"})
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Delete(stranger.ID, model.RoleCreator, victim.ID), util.ErrPermissionDenied)
		assert.NoError(t, svc.Delete(creator.ID, model.RoleCreator, victim.ID))

		_, err = svc.Get(victim.ID, creator.ID, model.RoleCreator)
		assert.ErrorIs(t, err, util.ErrTrackNotFound)
	})
}

func TestTrackEnroll(t *testing.T) {
	e := newTestEnv(t)
	svc := newTrackService(e)

	creator := e.createUser(t, "creator", model.RoleCreator)
	learner := e.createUser(t, "learner", model.RoleLearner)

	draft := e.createTrack(t, creator.ID, false)
	_, err := svc.Enroll(learner.ID, draft.ID)
	assert.ErrorIs(t, err, util.ErrTrackNotPublished)

	_, err = svc.Enroll(learner.ID, 9999)
	assert.ErrorIs(t, err, util.ErrTrackNotFound)

	published := e.createTrack(t, creator.ID, true)
	enrollment, err := svc.Enroll(learner.ID, published.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, enrollment.Progress)
	assert.False(t, enrollment.Completed)

	_, err = svc.Enroll(learner.ID, published.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
}
