package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/cache"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrAvatarStorageDisabled   = errors.New("avatar storage is not configured")
	ErrAvatarUploadNotFound    = errors.New("avatar upload not found")
	ErrUnsupportedAvatarFormat = errors.New("unsupported avatar content type")
)

// Profile is a user together with a short-lived avatar link.
type Profile struct {
	User      *domain.User
	AvatarURL string
}

// AvatarUpload tells the client where to PUT the image and which key to confirm afterwards.
type AvatarUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, update domain.ProfileUpdate) (*Profile, error)
	RequestAvatarUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*AvatarUpload, error)
	// ConfirmAvatar points the profile at an uploaded object and deletes the previous one.
	ConfirmAvatar(ctx context.Context, userID primitive.ObjectID, objectKey string) (*Profile, error)
}

type profileService struct {
	userRepo repository.UserRepository
	profiles cache.ProfileCache
	files    storage.FileStorage // nil when S3 is not configured
}

func NewProfileService(userRepo repository.UserRepository, profiles cache.ProfileCache, files storage.FileStorage) ProfileService {
	if profiles == nil {
		profiles = cache.NoopProfileCache{}
	}
	return &profileService{userRepo: userRepo, profiles: profiles, files: files}
}

func (s *profileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	user, ok := s.profiles.Get(ctx, userID)
	if !ok {
		var err error
		if user, err = s.loadUser(ctx, userID); err != nil {
			return nil, err
		}
		s.profiles.Set(ctx, user)
	}
	return s.present(ctx, user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update domain.ProfileUpdate) (*Profile, error) {
	if err := validateProfileUpdate(update); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Apply(update)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.profiles.Invalidate(ctx, userID)
	return s.present(ctx, user), nil
}

func (s *profileService) RequestAvatarUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*AvatarUpload, error) {
	if s.files == nil {
		return nil, ErrAvatarStorageDisabled
	}
	if !storage.AvatarContentTypeAllowed(contentType) {
		return nil, ErrUnsupportedAvatarFormat
	}
	key := storage.AvatarObjectKey(userID, contentType)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign avatar upload: %w", err)
	}
	return &AvatarUpload{UploadURL: url, ObjectKey: key}, nil
}

func (s *profileService) ConfirmAvatar(ctx context.Context, userID primitive.ObjectID, objectKey string) (*Profile, error) {
	if s.files == nil {
		return nil, ErrAvatarStorageDisabled
	}
	if !storage.OwnsAvatarKey(userID, objectKey) {
		return nil, fmt.Errorf("%w: objectKey was not issued to this user", ErrValidationFailed)
	}
	exists, err := s.files.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("check avatar upload: %w", err)
	}
	if !exists {
		return nil, ErrAvatarUploadNotFound
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := user.AvatarKey
	user.AvatarKey = objectKey
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.profiles.Invalidate(ctx, userID)

	if previous != "" && previous != objectKey {
		// The profile already points at the new object; a leftover file is only wasted space.
		if err := s.files.DeleteObject(ctx, previous); err != nil {
			log.Printf("WARN: Failed to delete previous avatar %s for user %s: %v", previous, userID.Hex(), err)
		}
	}
	return s.present(ctx, user), nil
}

func (s *profileService) loadUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) present(ctx context.Context, user *domain.User) *Profile {
	user.PasswordHash = ""
	p := &Profile{User: user}
	if user.AvatarKey != "" && s.files != nil {
		url, err := s.files.GeneratePresignedDownloadURL(ctx, user.AvatarKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			log.Printf("WARN: Failed to presign avatar for user %s: %v", user.ID.Hex(), err)
		} else {
			p.AvatarURL = url
		}
	}
	return p
}

func validateProfileUpdate(u domain.ProfileUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidationFailed)
	}
	if u.HeightCm != nil && (*u.HeightCm <= 0 || *u.HeightCm > 300) {
		return fmt.Errorf("%w: heightCm must be between 0 and 300", ErrValidationFailed)
	}
	if u.WeightKg != nil && (*u.WeightKg <= 0 || *u.WeightKg > 500) {
		return fmt.Errorf("%w: weightKg must be between 0 and 500", ErrValidationFailed)
	}
	if u.FitnessLevel != nil {
		switch *u.FitnessLevel {
		case domain.FitnessBeginner, domain.FitnessIntermediate, domain.FitnessAdvanced:
		default:
			return fmt.Errorf("%w: unknown fitnessLevel %q", ErrValidationFailed, *u.FitnessLevel)
		}
	}
	return nil
}
