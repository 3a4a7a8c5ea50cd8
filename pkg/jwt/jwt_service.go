package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeVerify  = "verify"
	TokenTypeReset   = "reset"

	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
	VerifyTokenTTL  = 24 * time.Hour
	ResetTokenTTL   = time.Hour
)

type (
	JWTService interface {
		GenerateTokenUser(userId string, role string) string
		GenerateSession(userId string, role string) (domain.Session, error)
		GenerateToken(userId string, role string, tokenType string, duration time.Duration) (string, error)
		ValidateTokenUser(token string) (*jwt.Token, error)
		GetUserIDByToken(token string) (string, string, error)
		GetUserIDByTypedToken(token string, tokenType string) (string, error)
	}

	jwtUserClaim struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
		Type   string `json:"type"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		now       func() time.Time
	}
)

func getSecretKey() string {
	utils.LoadConfig()
	secretKey := utils.GetConfig("JWT_SECRET")
	if secretKey == "" {
		log.Warn("JWT_SECRET is not set, tokens are signed with an empty key")
	}
	return secretKey
}

func NewJWTService() JWTService {
	return &jwtService{
		secretKey: getSecretKey(),
		issuer:    utils.GetConfig("JWT_ISSUER"),
		now:       time.Now,
	}
}

// NewJWTServiceWithSecret is used by tests and tools that do not read
// config.yaml.
func NewJWTServiceWithSecret(secret, issuer string) JWTService {
	return &jwtService{secretKey: secret, issuer: issuer, now: time.Now}
}

// GenerateTokenUser issues an access token. Signing failures are logged and
// yield an empty token.
func (j *jwtService) GenerateTokenUser(userId string, role string) string {
	token, err := j.GenerateToken(userId, role, TokenTypeAccess, AccessTokenTTL)
	if err != nil {
		log.Errorf("sign access token: %v", err)
	}
	return token
}

func (j *jwtService) GenerateToken(userId string, role string, tokenType string, duration time.Duration) (string, error) {
	now := j.now()
	claims := jwtUserClaim{
		userId,
		role,
		tokenType,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userId,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) GenerateSession(userId string, role string) (domain.Session, error) {
	access, err := j.GenerateToken(userId, role, TokenTypeAccess, AccessTokenTTL)
	if err != nil {
		return domain.Session{}, err
	}
	refresh, err := j.GenerateToken(userId, role, TokenTypeRefresh, RefreshTokenTTL)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
		ExpiresAt:    j.now().Add(AccessTokenTTL).UTC(),
	}, nil
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateTokenUser(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &jwtUserClaim{}, j.parseToken)
}

func (j *jwtService) claims(token string) (*jwtUserClaim, error) {
	t_Token, err := j.ValidateTokenUser(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return t_Token.Claims.(*jwtUserClaim), nil
}

// GetUserIDByToken accepts access tokens only.
func (j *jwtService) GetUserIDByToken(token string) (string, string, error) {
	claims, err := j.claims(token)
	if err != nil {
		return "", "", err
	}
	if claims.Type != TokenTypeAccess {
		return "", "", domain.ErrTokenInvalid
	}
	return claims.UserID, claims.Role, nil
}

func (j *jwtService) GetUserIDByTypedToken(token string, tokenType string) (string, error) {
	claims, err := j.claims(token)
	if err != nil {
		return "", err
	}
	if claims.Type != tokenType {
		return "", domain.ErrTokenInvalid
	}
	return claims.UserID, nil
}
