package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
)

type fakeUploader struct {
	calls int
	url   string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url + "/" + key, nil
}

func registerTestUser(t *testing.T, repo *fakeUserRepo) *domain.User {
	t.Helper()
	user := &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestProfileServiceUpload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("stores an image inline", func(t *testing.T) {
		repo := newFakeUserRepo()
		user := registerTestUser(t, repo)
		dispatcher := &recordingDispatcher{}
		svc := NewProfileService(repo, nil, nil, dispatcher, logger)

		picture, err := svc.Upload(ctx, user.ID, "image/png", []byte("png-bytes"))
		require.NoError(t, err)
		require.Equal(t, "image/png", picture.ContentType)
		require.Nil(t, picture.URL)

		stored, err := repo.GetProfilePicture(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []byte("png-bytes"), stored.Data)
		require.Len(t, dispatcher.byType(events.EventProfilePictureUpdated), 1)
	})

	t.Run("mirrors to object storage when configured", func(t *testing.T) {
		repo := newFakeUserRepo()
		user := registerTestUser(t, repo)
		uploader := &fakeUploader{url: "https://cdn.example.com"}
		svc := NewProfileService(repo, nil, uploader, nil, logger)

		picture, err := svc.Upload(ctx, user.ID, "image/jpeg", []byte("jpeg-bytes"))
		require.NoError(t, err)
		require.Equal(t, 1, uploader.calls)
		require.NotNil(t, picture.URL)
		require.Contains(t, *picture.URL, "https://cdn.example.com/profiles/"+user.ID)
	})

	t.Run("rejects non-image uploads without touching the user", func(t *testing.T) {
		repo := newFakeUserRepo()
		user := registerTestUser(t, repo)
		svc := NewProfileService(repo, nil, nil, nil, logger)

		_, err := svc.Upload(ctx, user.ID, "text/plain", []byte("hello"))
		requireDomainError(t, err, "VALIDATION_FAILED", 400)

		_, err = repo.GetProfilePicture(ctx, user.ID)
		require.Error(t, err)
	})

	t.Run("rejects files over 2MB", func(t *testing.T) {
		repo := newFakeUserRepo()
		user := registerTestUser(t, repo)
		svc := NewProfileService(repo, nil, nil, nil, logger)

		oversized := bytes.Repeat([]byte("a"), maxPictureBytes+1)
		_, err := svc.Upload(ctx, user.ID, "image/png", oversized)
		requireDomainError(t, err, "VALIDATION_FAILED", 400)
	})

	t.Run("rejects an empty upload", func(t *testing.T) {
		repo := newFakeUserRepo()
		user := registerTestUser(t, repo)
		svc := NewProfileService(repo, nil, nil, nil, logger)

		_, err := svc.Upload(ctx, user.ID, "image/png", nil)
		requireDomainError(t, err, "VALIDATION_FAILED", 400)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		svc := NewProfileService(newFakeUserRepo(), nil, nil, nil, logger)

		_, err := svc.Upload(ctx, "user-gone", "image/png", []byte("png-bytes"))
		requireDomainError(t, err, "NOT_FOUND", 404)
	})
}

func TestProfileServiceGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("returns the stored picture", func(t *testing.T) {
		repo := newFakeUserRepo()
		user := registerTestUser(t, repo)
		svc := NewProfileService(repo, nil, nil, nil, logger)

		_, err := svc.Upload(ctx, user.ID, "image/png", []byte("png-bytes"))
		require.NoError(t, err)

		picture, err := svc.Get(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "image/png", picture.ContentType)
		require.Equal(t, []byte("png-bytes"), picture.Data)
	})

	t.Run("not found when no picture is set", func(t *testing.T) {
		repo := newFakeUserRepo()
		user := registerTestUser(t, repo)
		svc := NewProfileService(repo, nil, nil, nil, logger)

		_, err := svc.Get(ctx, user.ID)
		requireDomainError(t, err, "NOT_FOUND", 404)
	})
}
