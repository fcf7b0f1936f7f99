package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/persistence"
	"github.com/spec-kit/task-service/internal/repository"
	"github.com/spec-kit/task-service/internal/storage"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

const (
	maxPictureBytes  = 2 << 20 // 2MB
	pictureCacheTTL  = 10 * time.Minute
	pictureKeyPrefix = "profile_picture:"
)

// ProfileService stores and serves profile pictures. The inline Postgres copy
// is authoritative; Redis is a read-through cache and the object-store mirror
// is best effort.
type ProfileService struct {
	users      repository.UserRepository
	cache      *persistence.Redis
	uploader   storage.BlobUploader
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewProfileService builds the service. uploader may be nil when no object
// storage is configured.
func NewProfileService(users repository.UserRepository, cache *persistence.Redis, uploader storage.BlobUploader, dispatcher events.Dispatcher, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		users:      users,
		cache:      cache,
		uploader:   uploader,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Upload validates and stores a profile picture for the user. Only image
// mimetypes up to 2MB are accepted.
func (s *ProfileService) Upload(ctx context.Context, userID, contentType string, data []byte) (*domain.ProfilePicture, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("no file uploaded", nil)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperrors.NewValidationError("invalid file type, only images are allowed", nil)
	}
	if len(data) > maxPictureBytes {
		return nil, apperrors.NewValidationError("file exceeds the 2MB limit", nil)
	}

	picture := &domain.ProfilePicture{
		Data:        data,
		ContentType: contentType,
	}

	if s.uploader != nil {
		key := fmt.Sprintf("profiles/%s/%s", userID, uuid.NewString())
		url, err := s.uploader.Upload(ctx, key, contentType, data)
		if err != nil {
			s.logger.Warn("profile picture mirror failed", zap.String("user_id", userID), zap.Error(err))
		} else {
			picture.URL = &url
		}
	}

	if err := s.users.SetProfilePicture(ctx, userID, picture); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	s.invalidateCache(ctx, userID)
	s.publishUpdated(ctx, userID, picture)
	return picture, nil
}

// Get returns the stored picture, serving from cache when possible.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.ProfilePicture, error) {
	if cached := s.fromCache(ctx, userID); cached != nil {
		return cached, nil
	}

	picture, err := s.users.GetProfilePicture(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile picture", nil)
		}
		return nil, err
	}

	s.toCache(ctx, userID, picture)
	return picture, nil
}

// Cache layout: two keys per user, bytes and content type. Both expire
// together and are dropped on upload.
func (s *ProfileService) fromCache(ctx context.Context, userID string) *domain.ProfilePicture {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.GetBytes(ctx, pictureKeyPrefix+userID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("profile picture cache read failed", zap.Error(err))
		}
		return nil
	}
	contentType, err := s.cache.GetBytes(ctx, pictureKeyPrefix+userID+":type")
	if err != nil {
		return nil
	}
	return &domain.ProfilePicture{Data: data, ContentType: string(contentType)}
}

func (s *ProfileService) toCache(ctx context.Context, userID string, picture *domain.ProfilePicture) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetBytes(ctx, pictureKeyPrefix+userID, picture.Data, pictureCacheTTL); err != nil {
		s.logger.Debug("profile picture cache write failed", zap.Error(err))
		return
	}
	_ = s.cache.SetBytes(ctx, pictureKeyPrefix+userID+":type", []byte(picture.ContentType), pictureCacheTTL)
}

func (s *ProfileService) invalidateCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, pictureKeyPrefix+userID, pictureKeyPrefix+userID+":type"); err != nil {
		s.logger.Debug("profile picture cache invalidation failed", zap.Error(err))
	}
}

func (s *ProfileService) publishUpdated(ctx context.Context, userID string, picture *domain.ProfilePicture) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventProfilePictureUpdated,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload: events.ProfilePictureUpdatedPayload{
			ContentType: picture.ContentType,
			SizeBytes:   len(picture.Data),
			MirrorURL:   picture.URL,
		},
	})
}
