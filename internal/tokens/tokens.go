package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = 30 * time.Minute
	RefreshTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// AccessClaims is the fixed claim set carried by an access token. The
// payload holds everything downstream authorization needs, so protected
// handlers never go back to the database to resolve the caller.
type AccessClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims mirrors AccessClaims but is signed with the independent
// refresh secret, so compromise of one secret never forges the other class.
type RefreshClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func SignAccessToken(userID uint, username, role string, secret []byte) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(AccessTTL)
	claims := AccessClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func SignRefreshToken(userID uint, username, role string, secret []byte) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(RefreshTTL)
	claims := RefreshClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func hs256KeyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}
}

func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, hs256KeyFunc(secret))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func RefreshClaimsFromToken(tokenStr string, secret []byte) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, hs256KeyFunc(secret))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// ExpiredAccessClaims verifies the signature but skips expiry validation.
// Logout needs the exp claim of a token that may have just expired.
func ExpiredAccessClaims(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, hs256KeyFunc(secret), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

// ExpiredRefreshClaims is the refresh-secret counterpart of ExpiredAccessClaims.
func ExpiredRefreshClaims(tokenStr string, secret []byte) (*RefreshClaims, error) {
	var claims RefreshClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, hs256KeyFunc(secret), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	return &claims, nil
}
