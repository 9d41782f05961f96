package util

import (
	"errors"
	"time"

	"yatube/config"

	"github.com/dgrijalva/jwt-go"
)

const passwordResetType = "password_reset"

func GenerateToken(userID int) (string, error) {
	maxAge := config.AppConfig.SessionMaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(maxAge).Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

func ValidateToken(tokenString string) (int, error) {
	if tokenString == "" {
		return 0, errors.New("令牌为空")
	}

	claims, err := parseClaims(tokenString)
	if err != nil {
		return 0, err
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("无效的用户ID")
	}
	return int(userID), nil
}

func RefreshToken(tokenString string) (string, error) {
	userID, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return GenerateToken(userID)
}

// GeneratePasswordResetToken 生成一小时内有效的密码重置令牌
func GeneratePasswordResetToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(1 * time.Hour).Unix(),
		"type":  passwordResetType,
	})
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidatePasswordResetToken 返回令牌中的邮箱
func ValidatePasswordResetToken(tokenString string) (string, error) {
	claims, err := parseClaims(tokenString)
	if err != nil {
		return "", err
	}
	if t, _ := claims["type"].(string); t != passwordResetType {
		return "", errors.New("无效的令牌类型")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("令牌中缺少邮箱信息")
	}
	return email, nil
}

func parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("不支持的签名算法")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的令牌")
}
