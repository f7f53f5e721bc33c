package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
	"github.com/souleimarejeb/rbac-app/internal/model"
	"github.com/souleimarejeb/rbac-app/internal/testutil"
)

func newUserService(repo *MockUserRepository) *userService {
	return NewUserService(repo, cheapHasher(), nil, testutil.MakeNoopLogger()).(*userService)
}

func strPtr(s string) *string { return &s }

func TestUserService_Create(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	svc := newUserService(mockRepo)

	user, err := svc.Create(context.Background(), model.NewUser{
		Name:     "Alice",
		Username: "alice01",
		Password: "correcthorse",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "generated-id", user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, model.DefaultName, user.LastName)

	ok, err := cheapHasher().Verify(user.PasswordHash, "correcthorse")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserService_GetByID(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, "u-1").Return(&model.User{ID: "u-1", Username: "alice01"}, nil)
	mockRepo.On("FindByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("User with ID %s not found", "missing"))
	svc := newUserService(mockRepo)

	user, err := svc.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "alice01", user.Username)

	_, err = svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "User with ID missing not found")
}

func TestUserService_ListPage(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantOffset int
		wantLimit  int
	}{
		{name: "second page", page: 2, limit: 10, wantOffset: 10, wantLimit: 10},
		{name: "defaults", page: 0, limit: 0, wantOffset: 0, wantLimit: defaultPageLimit},
		{name: "limit capped", page: 1, limit: 1000, wantOffset: 0, wantLimit: maxPageLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockRepo.On("ListPage", mock.Anything, tt.wantOffset, tt.wantLimit).
				Return([]model.User{{ID: "u-1"}}, int64(25), nil)
			svc := newUserService(mockRepo)

			page, err := svc.ListPage(context.Background(), tt.page, tt.limit)
			require.NoError(t, err)

			assert.Len(t, page.Items, 1)
			assert.Equal(t, int64(25), page.Meta.TotalItems)
			assert.Equal(t, tt.wantLimit, page.Meta.Limit)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_ListPage_RejectsOverflowingPage(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newUserService(mockRepo)

	_, err := svc.ListPage(context.Background(), math.MaxInt/maxPageLimit+2, maxPageLimit)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockRepo.AssertNotCalled(t, "ListPage", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_ListPage_LastAddressablePage(t *testing.T) {
	page := math.MaxInt/maxPageLimit + 1
	mockRepo := new(MockUserRepository)
	mockRepo.On("ListPage", mock.Anything, (page-1)*maxPageLimit, maxPageLimit).
		Return([]model.User{}, int64(0), nil)
	svc := newUserService(mockRepo)

	res, err := svc.ListPage(context.Background(), page, maxPageLimit)
	require.NoError(t, err)

	assert.Equal(t, page, res.Meta.Page)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetByID_ReadsThroughCache(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, "u-1").Return(&model.User{ID: "u-1", Username: "alice01"}, nil).Once()
	userCache := newMemoryCache()
	svc := NewUserService(mockRepo, cheapHasher(), userCache, testutil.MakeNoopLogger())

	for i := 0; i < 2; i++ {
		user, err := svc.GetByID(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, "alice01", user.Username)
	}

	assert.True(t, userCache.has("user:u-1"))
	mockRepo.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestUserService_InvalidatesCache(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(svc UserService, mockRepo *MockUserRepository) error
	}{
		{
			name: "update",
			mutate: func(svc UserService, mockRepo *MockUserRepository) error {
				mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				_, err := svc.Update(context.Background(), "u-1", model.UserPatch{Name: strPtr("Alicia")})
				return err
			},
		},
		{
			name: "delete",
			mutate: func(svc UserService, mockRepo *MockUserRepository) error {
				mockRepo.On("SoftDelete", mock.Anything, "u-1", mock.AnythingOfType("time.Time")).Return(nil)
				_, err := svc.Delete(context.Background(), "u-1")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockRepo.On("FindByID", mock.Anything, "u-1").
				Return(&model.User{ID: "u-1", Name: "Alice"}, nil)
			userCache := newMemoryCache()
			svc := NewUserService(mockRepo, cheapHasher(), userCache, testutil.MakeNoopLogger())

			_, err := svc.GetByID(context.Background(), "u-1")
			require.NoError(t, err)
			require.True(t, userCache.has("user:u-1"))

			require.NoError(t, tt.mutate(svc, mockRepo))

			assert.False(t, userCache.has("user:u-1"))
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Update_MergesPresentFields(t *testing.T) {
	stored := &model.User{
		ID:               "u-1",
		Name:             "Alice",
		LastName:         "Smith",
		Username:         "alice01",
		Email:            "alice@example.com",
		PasswordHash:     "old-hash",
		AuthenticationID: "auth-1",
	}
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, "u-1").Return(stored, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	svc := newUserService(mockRepo)

	user, err := svc.Update(context.Background(), "u-1", model.UserPatch{Name: strPtr("NewName")})
	require.NoError(t, err)

	assert.Equal(t, "NewName", user.Name)
	assert.Equal(t, "Smith", user.LastName)
	assert.Equal(t, "alice01", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "old-hash", user.PasswordHash)
	assert.Equal(t, "auth-1", user.AuthenticationID)
}

func TestUserService_Update_HashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, "u-1").Return(&model.User{ID: "u-1", PasswordHash: "old-hash"}, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	svc := newUserService(mockRepo)

	patch := model.UserPatch{Password: strPtr("n3w-password")}
	user, err := svc.Update(context.Background(), "u-1", patch)
	require.NoError(t, err)

	assert.NotEqual(t, "n3w-password", user.PasswordHash)
	ok, err := cheapHasher().Verify(user.PasswordHash, "n3w-password")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "n3w-password", *patch.Password)
}

func TestUserService_Update_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("User with ID %s not found", "missing"))
	svc := newUserService(mockRepo)

	_, err := svc.Update(context.Background(), "missing", model.UserPatch{Name: strPtr("x")})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_Delete(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, "u-1").Return(&model.User{ID: "u-1"}, nil)
	mockRepo.On("SoftDelete", mock.Anything, "u-1", at).Return(nil)
	svc := newUserService(mockRepo)
	svc.now = func() time.Time { return at }

	res, err := svc.Delete(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, &model.DeleteResult{Deleted: true}, res)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("User with ID %s not found", "missing"))
	svc := newUserService(mockRepo)

	_, err := svc.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	mockRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}
