package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"learnx_backend/internal/model"
	"learnx_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func TestHandleServiceError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{ErrTrackNotFound, http.StatusNotFound},
		{ErrQuizNotFound, http.StatusNotFound},
		{ErrReviewNotFound, http.StatusNotFound},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrNotEnrolled, http.StatusForbidden},
		{ErrTrackNotPublished, http.StatusForbidden},
		{ErrAlreadyEnrolled, http.StatusConflict},
		{ErrModuleOrderConflict, http.StatusConflict},
		{ErrEmailRegistered, http.StatusConflict},
		{ErrQuestionTooShort, http.StatusBadRequest},
		{ErrInvalidRating, http.StatusBadRequest},
		{ErrEmptyContent, http.StatusBadRequest},
		{ErrInvitationExpired, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrAIUnavailable, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		recorder := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(recorder)

		HandleServiceError(ctx, c.err)
		assert.Equal(t, c.code, recorder.Code, "err=%v", c.err)

		var resp Response
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, c.code, resp.Code)
		assert.NotEmpty(t, resp.Message)
	}
}

func TestSuccessEnvelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	Success(ctx, gin.H{"hello": "world"})
	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Name:  "小周",
		Email: "zhou@test.local",
		Role:  model.RoleCreator,
	}
	user.ID = 42

	token, err := GenerateJWT(user, "round-trip-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "round-trip-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.RoleCreator, claims.Role)
	assert.Equal(t, "zhou@test.local", claims.Email)

	_, err = ParseJWT(token, "wrong-secret")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, "round-trip-secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "round-trip-secret")
	assert.Error(t, err)
}
