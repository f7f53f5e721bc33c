package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
	"github.com/souleimarejeb/rbac-app/internal/model"
)

const mysqlDuplicateEntry = 1062

// UserRepository defines user persistence operations. Soft-deleted users are
// invisible to every method except FindAnyByID.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindAnyByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListPage(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// userRecord is the persistence mapping of model.User. Live is 1 for active
// rows and NULL once deleted, so the composite unique indexes only bind
// active users.
type userRecord struct {
	ID               string `gorm:"type:char(36);primaryKey"`
	Name             string `gorm:"size:250;not null;default:'N/A'"`
	LastName         string `gorm:"size:250;not null;default:'N/A'"`
	Username         string `gorm:"size:100;not null;uniqueIndex:idx_users_username_live,priority:1"`
	Email            string `gorm:"size:255;not null;uniqueIndex:idx_users_email_live,priority:1"`
	Password         string `gorm:"size:255;not null"`
	AuthenticationID string `gorm:"size:250;not null"`
	Live             *bool  `gorm:"uniqueIndex:idx_users_username_live,priority:2;uniqueIndex:idx_users_email_live,priority:2"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (userRecord) TableName() string {
	return "users"
}

var updatableColumns = []string{"name", "last_name", "username", "email", "password", "authentication_id", "updated_at"}

func fromModel(u *model.User) userRecord {
	rec := userRecord{
		ID:               u.ID,
		Name:             u.Name,
		LastName:         u.LastName,
		Username:         u.Username,
		Email:            u.Email,
		Password:         u.PasswordHash,
		AuthenticationID: u.AuthenticationID,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	if at, deleted := u.State.DeletedAt(); deleted {
		rec.DeletedAt = gorm.DeletedAt{Time: at, Valid: true}
	} else {
		live := true
		rec.Live = &live
	}
	return rec
}

func (r userRecord) toModel() model.User {
	u := model.User{
		ID:               r.ID,
		Name:             r.Name,
		LastName:         r.LastName,
		Username:         r.Username,
		Email:            r.Email,
		PasswordHash:     r.Password,
		AuthenticationID: r.AuthenticationID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		State:            model.Active(),
	}
	if r.DeletedAt.Valid {
		u.State = model.DeletedAt(r.DeletedAt.Time)
	}
	return u
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{})
}

// DropAll drops the users table.
func DropAll(db *gorm.DB) error {
	return db.Migrator().DropTable(&userRecord{})
}

// Create inserts the user, assigning its ID and timestamps.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.State = model.Active()
	rec := fromModel(user)

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.Conflict("user with this username or email already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.CreatedAt = rec.CreatedAt
	user.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User with ID %s not found", id)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	u := rec.toModel()
	return &u, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User with username %s not found", username)
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	u := rec.toModel()
	return &u, nil
}

// FindAnyByID bypasses the soft-delete scope.
func (r *userRepository) FindAnyByID(ctx context.Context, id string) (*model.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User with ID %s not found", id)
		}
		return nil, fmt.Errorf("find any user by id: %w", err)
	}
	u := rec.toModel()
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return toModels(recs), nil
}

func (r *userRepository) ListPage(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&userRecord{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var recs []userRecord
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, 0, fmt.Errorf("list users page: %w", err)
	}
	return toModels(recs), total, nil
}

// Update persists every mutable column of an active user.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	rec := fromModel(user)
	rec.UpdatedAt = time.Now()

	res := r.db.WithContext(ctx).Model(&rec).Select(updatableColumns).Updates(&rec)
	if err := res.Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.Conflict("user with this username or email already exists")
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("User with ID %s not found", user.ID)
	}

	user.UpdatedAt = rec.UpdatedAt
	return nil
}

// SoftDelete stamps deleted_at and releases the user's unique keys. The row stays.
func (r *userRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&userRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": at,
			"live":       nil,
		})
	if err := res.Error; err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("User with ID %s not found", id)
	}
	return nil
}

func toModels(recs []userRecord) []model.User {
	users := make([]model.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, rec.toModel())
	}
	return users
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
