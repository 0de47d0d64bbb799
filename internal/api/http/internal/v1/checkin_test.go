package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/service"
	"github.com/everkeep/backend/pkg/auth"
)

type fakeCheckIns struct {
	result *service.ConfirmCheckInResult
	err    error
	inputs []service.ConfirmCheckInInput
}

func (f *fakeCheckIns) Confirm(ctx context.Context, input service.ConfirmCheckInInput) (*service.ConfirmCheckInResult, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeCheckIns) History(ctx context.Context, userID uuid.UUID) ([]domain.CheckInResponse, error) {
	return nil, nil
}

func checkInRouter(checkIns *fakeCheckIns) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := &Handler{
		services: &service.Services{CheckIns: checkIns},
		config:   &config.Config{Env: "production"},
	}

	router := gin.New()
	handler.initCheckInRoutes(router.Group("/api/v1"))
	return router
}

func confirmRequest(router *gin.Engine, path string, userID, alive, token string) *httptest.ResponseRecorder {
	values := url.Values{}
	if userID != "" {
		values.Set("userId", userID)
	}
	if alive != "" {
		values.Set("alive", alive)
	}
	if token != "" {
		values.Set("token", token)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path+"?"+values.Encode(), nil)
	router.ServeHTTP(w, req)
	return w
}

func TestCheckInConfirmOK(t *testing.T) {
	checkIns := &fakeCheckIns{result: &service.ConfirmCheckInResult{Alive: true}}
	router := checkInRouter(checkIns)

	userID := uuid.New()
	w := confirmRequest(router, "/api/v1/check-in/confirm", userID.String(), "true", "some-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recorded")

	require.Len(t, checkIns.inputs, 1)
	assert.Equal(t, userID, checkIns.inputs[0].UserID)
	assert.True(t, checkIns.inputs[0].Alive)
	assert.Empty(t, checkIns.inputs[0].ExpectRole)
}

func TestCheckInConfirmBadQuery(t *testing.T) {
	checkIns := &fakeCheckIns{result: &service.ConfirmCheckInResult{}}
	router := checkInRouter(checkIns)

	tests := []struct {
		name   string
		userID string
		alive  string
		token  string
	}{
		{"missing user", "", "true", "tok"},
		{"bad user id", "not-a-uuid", "true", "tok"},
		{"missing alive", uuid.NewString(), "", "tok"},
		{"bad alive", uuid.NewString(), "maybe", "tok"},
		{"missing token", uuid.NewString(), "true", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := confirmRequest(router, "/api/v1/check-in/confirm", tt.userID, tt.alive, tt.token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	assert.Empty(t, checkIns.inputs)
}

func TestCheckInConfirmErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"expired token", auth.ErrCheckInTokenExpired, http.StatusUnauthorized},
		{"invalid token", auth.ErrCheckInTokenInvalid, http.StatusUnauthorized},
		{"mismatched claims", service.ErrCheckInTokenMismatch, http.StatusBadRequest},
		{"unknown user", service.ErrUserNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := checkInRouter(&fakeCheckIns{err: tt.err})
			w := confirmRequest(router, "/api/v1/check-in/confirm", uuid.NewString(), "true", "tok")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCheckInConfirmContactPath(t *testing.T) {
	checkIns := &fakeCheckIns{result: &service.ConfirmCheckInResult{Alive: false, WillsPending: true}}
	router := checkInRouter(checkIns)

	w := confirmRequest(router, "/api/v1/check-in/beneficiary/confirm", uuid.NewString(), "false", "tok")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "death verification started")

	require.Len(t, checkIns.inputs, 1)
	assert.Equal(t, auth.CheckInRoleBeneficiary, checkIns.inputs[0].ExpectRole)
}

func TestCheckInConfirmUnknownContactType(t *testing.T) {
	router := checkInRouter(&fakeCheckIns{result: &service.ConfirmCheckInResult{}})

	w := confirmRequest(router, "/api/v1/check-in/stranger/confirm", uuid.NewString(), "true", "tok")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckInConfirmReplayNotice(t *testing.T) {
	checkIns := &fakeCheckIns{result: &service.ConfirmCheckInResult{Alive: true, Replayed: true}}
	router := checkInRouter(checkIns)

	w := confirmRequest(router, "/api/v1/check-in/confirm", uuid.NewString(), "true", "tok")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already recorded")
}

func TestCheckInTriggerAbsentInProduction(t *testing.T) {
	router := checkInRouter(&fakeCheckIns{result: &service.ConfirmCheckInResult{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/check-in/trigger", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
