package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserUID              string `json:"uid"`
	Email                string `json:"email"`
	Role                 string `json:"role"`
	DisplayName          string `json:"name,omitempty"`
	Region               string `json:"region,omitempty"`
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Principal возвращает субъекта, записанного в токене.
func (c *CustomClaims) Principal() models.Principal {
	return models.Principal{
		UID:         c.UserUID,
		Email:       c.Email,
		Role:        models.Role(c.Role),
		DisplayName: c.DisplayName,
		Region:      c.Region,
	}
}

// GenerateToken создает JWT токен для субъекта, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(p models.Principal) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserUID:     p.UID,
		Email:       p.Email,
		Role:        string(p.Role),
		DisplayName: p.DisplayName,
		Region:      p.Region,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
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
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.UserUID == "" {
		return nil, fmt.Errorf("%s: token has no subject", op)
	}
	return claims, nil
}
