package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/souleimarejeb/rbac-app/internal/cache"
	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
	"github.com/souleimarejeb/rbac-app/internal/model"
	"github.com/souleimarejeb/rbac-app/internal/repository"
)

const (
	userCacheTTL = 5 * time.Minute

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UserService exposes the user directory.
type UserService interface {
	Create(ctx context.Context, input model.NewUser) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListPage(ctx context.Context, page, limit int) (model.Page[model.User], error)
	Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id string) (*model.DeleteResult, error)
}

// UserCache is the subset of cache.Client the directory reads through.
type UserCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type userService struct {
	repo   repository.UserRepository
	hasher PasswordHasher
	cache  UserCache
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService builds a UserService with repository and cache. A nil cache
// disables caching.
func NewUserService(repo repository.UserRepository, hasher PasswordHasher, userCache UserCache, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if userCache == nil {
		userCache = (*cache.Client)(nil)
	}
	return &userService{
		repo:   repo,
		hasher: hasher,
		cache:  userCache,
		logger: logger.With(slog.String("component", "user_service")),
		now:    time.Now,
	}
}

func (s *userService) cacheKey(id string) string {
	return "user:" + id
}

// Create stores a user directly, without issuing a token.
func (s *userService) Create(ctx context.Context, input model.NewUser) (*model.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := input.User(hash)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user created", slog.String("user_id", user.ID))
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// ListPage returns one page of active users. page starts at 1; out of range
// values fall back to the first page and the default limit. A page whose
// offset does not fit in an int is rejected.
func (s *userService) ListPage(ctx context.Context, page, limit int) (model.Page[model.User], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page-1 > math.MaxInt/limit {
		return model.Page[model.User]{}, apperrors.Validation([]string{"page: out of range"}, "invalid pagination")
	}

	users, total, err := s.repo.ListPage(ctx, (page-1)*limit, limit)
	if err != nil {
		return model.Page[model.User]{}, err
	}
	return model.Page[model.User]{
		Items: users,
		Meta:  model.NewPageMeta(page, limit, total),
	}, nil
}

// Update merges the present fields of patch over the stored user. A new
// password is hashed before it is stored.
func (s *userService) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.Password = &hash
	}
	patch.Apply(user)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// Delete soft-deletes the user. Its username and email become free again.
func (s *userService) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, s.cacheKey(id))
	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", id))
	return &model.DeleteResult{Deleted: true}, nil
}
