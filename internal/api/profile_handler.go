package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest leaves absent fields untouched.
type UpdateProfileRequest struct {
	Name         *string              `json:"name"`
	DateOfBirth  *time.Time           `json:"dateOfBirth"`
	Gender       *string              `json:"gender"`
	HeightCm     *float64             `json:"heightCm"`
	WeightKg     *float64             `json:"weightKg"`
	FitnessLevel *domain.FitnessLevel `json:"fitnessLevel"`
	Goals        []string             `json:"goals"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmAvatarRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, MapUserToResponse(profile.User, profile.AvatarURL))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, domain.ProfileUpdate{
		Name:         req.Name,
		DateOfBirth:  req.DateOfBirth,
		Gender:       req.Gender,
		HeightCm:     req.HeightCm,
		WeightKg:     req.WeightKg,
		FitnessLevel: req.FitnessLevel,
		Goals:        req.Goals,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, MapUserToResponse(profile.User, profile.AvatarURL))
}

// RequestAvatarUpload returns a presigned PUT URL. The client uploads, then confirms the key.
func (h *ProfileHandler) RequestAvatarUpload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.profileService.RequestAvatarUpload(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, upload)
}

func (h *ProfileHandler) ConfirmAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ConfirmAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.profileService.ConfirmAvatar(c.Request.Context(), userID, req.ObjectKey)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, MapUserToResponse(profile.User, profile.AvatarURL))
}
