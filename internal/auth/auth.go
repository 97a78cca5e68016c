package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"vaccine-scheduler-api/internal/model"
)

var ErrBadToken = errors.New("invalid token")

// Work factor is fixed and documented: PBKDF2-HMAC-SHA256, 100k rounds,
// 16-byte random salt. Changing it invalidates stored hashes.
const (
	saltLen    = 16
	keyLen     = 32
	iterations = 100_000
)

const specialChars = "!@#?"

func GenerateSalt() ([]byte, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func HashPassword(pw string, salt []byte) []byte {
	return pbkdf2.Key([]byte(pw), salt, iterations, keyLen, sha256.New)
}

func CheckPassword(pw string, salt, hash []byte) bool {
	got := pbkdf2.Key([]byte(pw), salt, iterations, keyLen, sha256.New)
	return subtle.ConstantTimeCompare(got, hash) == 1
}

// ValidatePassword enforces the registration policy: at least 8 characters,
// mixed case, a digit, and one of "!@#?".
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if !lower || !upper {
		return errors.New("password must contain both uppercase and lowercase letters")
	}
	if !digit {
		return errors.New("password must contain both letters and numbers")
	}
	if !special {
		return errors.New(`password must include a special character from "!", "@", "#", "?"`)
	}
	return nil
}

type Claims struct {
	Username string     `json:"sub_name"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// session token, good for one working session (1h)
func MakeToken(username string, role model.Role, secret string) (string, error) {
	c := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func ParseToken(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrBadToken
	}
	return c, nil
}
