package dto

import "github.com/noah-isme/exam-seating-api/internal/models"

// ReplaceDirectoryRequest captures PUT /faculty/directory payload. Either a
// ready bcrypt hash or a plain secure key (hashed server side) is accepted.
type ReplaceDirectoryRequest struct {
	SecureKeyHash string                 `json:"secureKeyHash" validate:"required_without=SecureKey"`
	SecureKey     string                 `json:"secureKey" validate:"required_without=SecureKeyHash,omitempty,min=8"`
	Faculty       []models.FacultyMember `json:"faculty" validate:"required,min=1,dive"`
}

// DirectoryResponse summarises the stored directory without the hash.
type DirectoryResponse struct {
	Faculty []models.FacultyMember `json:"faculty"`
}
