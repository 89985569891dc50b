package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateAccessToken создает access-токен с subject = userUID,
// подписывая его секретным ключом. Время жизни определяется полем accessTTL.
func (j *MakerImpl) GenerateAccessToken(userUID, email string) (string, error) {
	return j.generate(userUID, email, TokenTypeAccess, j.accessTTL)
}

// GenerateRefreshToken создает refresh-токен с subject = userUID.
// Время жизни определяется полем refreshTTL.
func (j *MakerImpl) GenerateRefreshToken(userUID, email string) (string, error) {
	return j.generate(userUID, email, TokenTypeRefresh, j.refreshTTL)
}

func (j *MakerImpl) generate(userUID, email, tokenType string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
