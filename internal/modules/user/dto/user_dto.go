package dto

import (
	"io"
)

// ImageFile is an image uploaded with the profile form.
type ImageFile struct {
	Reader   io.Reader
	FileName string
}

type SignupInput struct {
	Username string `form:"username" binding:"required,max=50"`
	Email    string `form:"email" binding:"required,email,max=100"`
	Password string `form:"password" binding:"required,min=6"`
	ImageURL string `form:"image_url" binding:"omitempty,url"`
}

type LoginInput struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// UpdateProfileInput requires the current password to confirm the change.
type UpdateProfileInput struct {
	Username       string `form:"username" binding:"required,max=50"`
	Email          string `form:"email" binding:"required,email,max=100"`
	ImageURL       string `form:"image_url" binding:"max=2048"`
	HeaderImageURL string `form:"header_image_url" binding:"max=2048"`
	Bio            string `form:"bio" binding:"max=500"`
	Location       string `form:"location" binding:"max=100"`
	Password       string `form:"password" binding:"required"`
}

type ProfileImages struct {
	Image  *ImageFile
	Header *ImageFile
}

// UserStats are the counters shown on a profile.
type UserStats struct {
	Messages  int64
	Following int64
	Followers int64
	Likes     int64
}
