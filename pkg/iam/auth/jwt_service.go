package auth

import (
	"fmt"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService implementación del TokenService usando JWT (HS256)
type JWTService struct {
	secretKey       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	issuer          string
}

// NewJWTService crea una nueva instancia del servicio JWT
func NewJWTService(secretKey string, accessTokenTTL, refreshTokenTTL time.Duration, issuer string) *JWTService {
	if accessTokenTTL == 0 {
		accessTokenTTL = 60 * time.Minute
	}
	if refreshTokenTTL == 0 {
		refreshTokenTTL = 7 * 24 * time.Hour
	}
	if issuer == "" {
		issuer = "fittsee"
	}

	return &JWTService{
		secretKey:       []byte(secretKey),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		issuer:          issuer,
	}
}

// JWTClaims personalizados para JWT
type JWTClaims struct {
	Email string      `json:"email"`
	Role  kernel.Role `json:"role"`
	Type  TokenType   `json:"type"`
	jwt.RegisteredClaims
}

func (j *JWTService) GenerateAccessToken(ac *kernel.AuthContext) (string, error) {
	return j.sign(ac, TokenTypeAccess, j.accessTokenTTL)
}

func (j *JWTService) GenerateRefreshToken(ac *kernel.AuthContext) (string, error) {
	return j.sign(ac, TokenTypeRefresh, j.refreshTokenTTL)
}

func (j *JWTService) sign(ac *kernel.AuthContext, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := JWTClaims{
		Email: ac.Email,
		Role:  ac.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   ac.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}
	return signed, nil
}

// ValidateAccessToken valida y decodifica un token de acceso
func (j *JWTService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	return j.validate(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken valida un token de refresh
func (j *JWTService) ValidateRefreshToken(tokenString string) (*TokenClaims, error) {
	claims, err := j.validate(tokenString, TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken().WithDetail("error", err.Error())
	}
	return claims, nil
}

func (j *JWTService) validate(tokenString string, want TokenType) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(j.issuer))
	if err != nil {
		return nil, ErrTokenValidationFailed().WithDetail("error", err.Error())
	}

	jwtClaims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenValidationFailed().WithDetail("error", "invalid claims")
	}
	if jwtClaims.Type != want {
		return nil, ErrTokenValidationFailed().WithDetail("error", fmt.Sprintf("expected %s token", want))
	}
	if jwtClaims.Subject == "" {
		return nil, ErrTokenValidationFailed().WithDetail("error", "missing subject")
	}

	return &TokenClaims{
		UserID:    kernel.UserID(jwtClaims.Subject),
		Email:     jwtClaims.Email,
		Role:      jwtClaims.Role,
		Type:      jwtClaims.Type,
		IssuedAt:  jwtClaims.IssuedAt.Time,
		ExpiresAt: jwtClaims.ExpiresAt.Time,
	}, nil
}
