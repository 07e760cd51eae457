package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrObjectNotFound = errors.New("object not found in storage")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// ObjectExists reports whether a client finished uploading to objectKey.
	ObjectExists(ctx context.Context, objectKey string) (bool, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AvatarContentTypeAllowed reports whether contentType may be uploaded as an avatar.
func AvatarContentTypeAllowed(contentType string) bool {
	_, ok := avatarExtensions[contentType]
	return ok
}

// AvatarObjectKey builds a fresh, unguessable key under the user's avatar prefix.
func AvatarObjectKey(userID primitive.ObjectID, contentType string) string {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("avatars/%s/%s.%s", userID.Hex(), uuid.NewString(), ext)
}

// OwnsAvatarKey guards the confirm step: users may only claim keys issued under their own prefix.
func OwnsAvatarKey(userID primitive.ObjectID, objectKey string) bool {
	return strings.HasPrefix(objectKey, "avatars/"+userID.Hex()+"/") && !strings.Contains(objectKey, "..")
}
