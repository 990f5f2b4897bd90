// Package token issues and verifies the bearer tokens used by the identity
// service. Tokens are stateless HS256 JWTs: there is no revocation list, so a
// token stays valid until expiry even if the account is deactivated. Callers
// mitigate that by re-checking the account's active flag on every
// authenticated request.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is the single outcome for every verification failure.
// Callers never learn whether the signature, the expiry, or the shape of the
// token was at fault.
var ErrUnauthorized = errors.New("could not validate credentials")

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the default token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for the given subject with the issuer's default TTL.
// The subject id is carried in the standard "sub" claim as a string, the
// account role discriminator in "user_type".
func (i *Issuer) Issue(subjectID int64, userType string) (string, error) {
	return i.IssueWithTTL(subjectID, userType, i.ttl)
}

// IssueWithTTL signs a token with an explicit lifetime.
func (i *Issuer) IssueWithTTL(subjectID int64, userType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":       strconv.FormatInt(subjectID, 10),
		"user_type": userType,
		"exp":       now.Add(ttl).Unix(),
		"iat":       now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify parses and validates a token string and returns the subject id.
// It fails closed: any defect (bad signature, wrong algorithm, malformed
// token, expiry, missing or non-numeric sub) yields ErrUnauthorized.
func (i *Issuer) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrUnauthorized
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrUnauthorized
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrUnauthorized
	}
	return id, nil
}

// UserType extracts the user_type claim from a verified token string.
// It shares Verify's fail-closed behavior.
func (i *Issuer) UserType(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	ut, _ := claims["user_type"].(string)
	if ut == "" {
		return "", ErrUnauthorized
	}
	return ut, nil
}
