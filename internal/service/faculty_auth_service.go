package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/repository"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type facultyDirectoryStore interface {
	Load(ctx context.Context) (*models.FacultyDirectory, error)
	Replace(ctx context.Context, dir *models.FacultyDirectory) error
}

// AuthConfig defines configuration for token issuance.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// FacultyAuthService checks faculty credentials against the directory and
// issues access tokens.
type FacultyAuthService struct {
	directory facultyDirectoryStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewFacultyAuthService constructs a FacultyAuthService instance.
func NewFacultyAuthService(directory facultyDirectoryStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *FacultyAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	return &FacultyAuthService{directory: directory, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login verifies the shared secure key and the faculty id, then issues a token.
func (s *FacultyAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	dir, err := s.directory.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrDirectoryNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnavailable, "faculty directory is not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty directory")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dir.SecureKeyHash), []byte(req.SecureKey)); err != nil {
		s.logger.Warn("faculty login rejected", zap.String("faculty_id", req.FacultyID), zap.String("reason", "secure key mismatch"), zap.String("ip", req.IP))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "secure key mismatch")
	}

	member, ok := dir.Lookup(req.FacultyID)
	if !ok {
		s.logger.Warn("faculty login rejected", zap.String("faculty_id", req.FacultyID), zap.String("reason", "unknown faculty"), zap.String("ip", req.IP))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "faculty id not found")
	}
	if member.Role == "" {
		member.Role = models.RoleFaculty
	}

	token, issuedAt, err := s.generateAccessToken(member)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("faculty signed in", zap.String("faculty_id", member.ID), zap.String("role", string(member.Role)))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		Faculty:     member,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *FacultyAuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ReplaceDirectory validates and stores a new faculty directory.
func (s *FacultyAuthService) ReplaceDirectory(ctx context.Context, req dto.ReplaceDirectoryRequest, actorID string) (*dto.DirectoryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty directory")
	}

	hash := req.SecureKeyHash
	if req.SecureKey != "" {
		generated, err := bcrypt.GenerateFromPassword([]byte(req.SecureKey), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash secure key")
		}
		hash = string(generated)
	} else if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "secureKeyHash is not a bcrypt hash")
	}

	seen := make(map[string]struct{}, len(req.Faculty))
	members := make([]models.FacultyMember, 0, len(req.Faculty))
	for _, m := range req.Faculty {
		key := models.NormalizeID(m.ID)
		if _, ok := seen[key]; ok {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("duplicate faculty id %q", m.ID))
		}
		seen[key] = struct{}{}
		if m.Role == "" {
			m.Role = models.RoleFaculty
		}
		members = append(members, m)
	}

	dir := &models.FacultyDirectory{SecureKeyHash: hash, Faculty: members}
	if err := s.directory.Replace(ctx, dir); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store faculty directory")
	}
	s.logger.Info("faculty directory replaced", zap.String("faculty_id", actorID), zap.Int("members", len(members)))
	return &dto.DirectoryResponse{Faculty: members}, nil
}

func (s *FacultyAuthService) generateAccessToken(member models.FacultyMember) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		FacultyID: member.ID,
		Role:      member.Role,
		Name:      member.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   member.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}
