package user

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/internal/utils/mailing"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/bizfish/tag-a-meal-app/pkg/jwt"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
		GetProfile(ctx context.Context, userID string) (domain.UserResponse, error)
		UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (domain.UserResponse, error)
		RefreshToken(ctx context.Context, refreshToken string) (domain.Session, error)
		VerifyEmail(ctx context.Context, token string) error
		RequestPasswordReset(ctx context.Context, email string) error
		UpdatePassword(ctx context.Context, userID string, password string) error
		ResetPassword(ctx context.Context, token string, password string) error
	}

	Options struct {
		RequireEmailVerification bool
		AppURL                   string
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		mailer         mailing.Mailer
		opts           Options
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, mailer mailing.Mailer, opts Options) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		mailer:         mailer,
		opts:           opts,
	}
}

func toUserResponse(u *entities.User) domain.UserResponse {
	return domain.UserResponse{
		ID:             u.ID.String(),
		Email:          u.Email,
		FullName:       u.FullName,
		AvatarURL:      u.AvatarURL,
		ShowAuthorName: u.ShowAuthorName,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	if verr := utils.ValidateEmail(req.Email); verr != nil {
		return domain.AuthResponse{}, verr
	}
	if verr := utils.ValidatePassword(req.Password, 6); verr != nil {
		return domain.AuthResponse{}, verr
	}

	email := strings.TrimSpace(req.Email)
	if _, err := s.userRepository.GetUserByEmail(ctx, database.Service(), email); err == nil {
		return domain.AuthResponse{}, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	user := &entities.User{
		ID:             uuid.New(),
		Email:          email,
		Password:       string(hash),
		FullName:       strings.TrimSpace(req.FullName),
		ShowAuthorName: true,
		IsVerified:     !s.opts.RequireEmailVerification,
	}

	// Without a session yet the profile row can only be written with the
	// service role; otherwise the new user writes its own row.
	principal := database.User(user.ID.String())
	if s.opts.RequireEmailVerification {
		principal = database.Service()
	}
	if err := s.userRepository.CreateUser(ctx, principal, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.AuthResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.AuthResponse{}, err
	}

	res := domain.AuthResponse{User: toUserResponse(user)}
	if s.opts.RequireEmailVerification {
		s.sendVerification(user)
		return res, nil
	}

	session, err := s.jwtService.GenerateSession(user.ID.String(), domain.RoleUser)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	res.Session = &session
	return res, nil
}

func (s *userService) sendVerification(user *entities.User) {
	token, err := s.jwtService.GenerateToken(user.ID.String(), domain.RoleUser, jwt.TokenTypeVerify, jwt.VerifyTokenTTL)
	if err != nil {
		log.Errorf("generate verification token for %s: %v", user.ID, err)
		return
	}
	link := strings.TrimRight(s.opts.AppURL, "/") + "/api/auth/verify?token=" + url.QueryEscape(token)
	subject, body := mailing.VerificationMail(link)
	if err := s.mailer.SendMail(user.Email, subject, body); err != nil {
		log.Errorf("send verification mail to %s: %v", user.Email, err)
	}
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	if verr := utils.ValidateEmail(req.Email); verr != nil {
		return domain.AuthResponse{}, verr
	}
	if verr := utils.ValidatePassword(req.Password, 6); verr != nil {
		return domain.AuthResponse{}, verr
	}

	user, err := s.userRepository.GetUserByEmail(ctx, database.Service(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AuthResponse{}, domain.ErrInvalidCredentials
		}
		return domain.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return domain.AuthResponse{}, domain.ErrEmailNotVerified
	}

	session, err := s.jwtService.GenerateSession(user.ID.String(), domain.RoleUser)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return domain.AuthResponse{User: toUserResponse(user), Session: &session}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, database.User(userID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (domain.UserResponse, error) {
	updates := map[string]any{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = req.AvatarURL
	}
	if req.ShowAuthorName != nil {
		updates["show_author_name"] = *req.ShowAuthorName
	}
	if len(updates) == 0 {
		return s.GetProfile(ctx, userID)
	}

	user, err := s.userRepository.UpdateUser(ctx, database.User(userID), userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (domain.Session, error) {
	userID, err := s.jwtService.GetUserIDByTypedToken(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return domain.Session{}, err
	}
	if _, err := s.userRepository.GetUserByID(ctx, database.User(userID), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, domain.ErrTokenInvalid
		}
		return domain.Session{}, err
	}
	return s.jwtService.GenerateSession(userID, domain.RoleUser)
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.jwtService.GetUserIDByTypedToken(token, jwt.TokenTypeVerify)
	if err != nil {
		return err
	}
	_, err = s.userRepository.UpdateUser(ctx, database.User(userID), userID, map[string]any{"is_verified": true})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	return err
}

// RequestPasswordReset mails a reset link. Unknown addresses are not
// reported so the endpoint cannot be used to probe for accounts.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	if verr := utils.ValidateEmail(email); verr != nil {
		return &utils.ValidationError{Message: "Valid email is required", StatusCode: verr.StatusCode}
	}

	user, err := s.userRepository.GetUserByEmail(ctx, database.Service(), strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := s.jwtService.GenerateToken(user.ID.String(), domain.RoleUser, jwt.TokenTypeReset, jwt.ResetTokenTTL)
	if err != nil {
		return err
	}
	link := strings.TrimRight(s.opts.AppURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	subject, body := mailing.ResetPasswordMail(link)
	return s.mailer.SendMail(user.Email, subject, body)
}

func (s *userService) UpdatePassword(ctx context.Context, userID string, password string) error {
	if verr := utils.ValidatePassword(password, 6); verr != nil {
		return verr
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.userRepository.UpdateUser(ctx, database.User(userID), userID, map[string]any{"password": string(hash)})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	return err
}

func (s *userService) ResetPassword(ctx context.Context, token string, password string) error {
	userID, err := s.jwtService.GetUserIDByTypedToken(token, jwt.TokenTypeReset)
	if err != nil {
		return err
	}
	return s.UpdatePassword(ctx, userID, password)
}
