package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// FitnessLevel is the self-reported experience level shown on a profile.
type FitnessLevel string

const (
	FitnessBeginner     FitnessLevel = "beginner"
	FitnessIntermediate FitnessLevel = "intermediate"
	FitnessAdvanced     FitnessLevel = "advanced"
)

// User represents an account together with its fitness profile.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Profile ---
	DateOfBirth  *time.Time   `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender       string       `bson:"gender,omitempty" json:"gender,omitempty"`
	HeightCm     float64      `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg     float64      `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	FitnessLevel FitnessLevel `bson:"fitnessLevel,omitempty" json:"fitnessLevel,omitempty"`
	Goals        []string     `bson:"goals,omitempty" json:"goals,omitempty"`
	AvatarKey    string       `bson:"avatarKey,omitempty" json:"-"` // S3 object key, internal use
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string
	DateOfBirth  *time.Time
	Gender       *string
	HeightCm     *float64
	WeightKg     *float64
	FitnessLevel *FitnessLevel
	Goals        []string
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Apply merges a ProfileUpdate into the user.
func (u *User) Apply(p ProfileUpdate) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.DateOfBirth != nil {
		u.DateOfBirth = p.DateOfBirth
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.HeightCm != nil {
		u.HeightCm = *p.HeightCm
	}
	if p.WeightKg != nil {
		u.WeightKg = *p.WeightKg
	}
	if p.FitnessLevel != nil {
		u.FitnessLevel = *p.FitnessLevel
	}
	if p.Goals != nil {
		u.Goals = p.Goals
	}
}
