package client

import (
	"fmt"

	"github.com/dmitrijs2005/pudo/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a backend id token.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Phone         string `json:"phone_number,omitempty"`
}

// SessionFromToken decodes an id token into a Session. The signature is not
// checked here: the token came from the backend over the authenticated
// channel and is only ever sent back to it.
func SessionFromToken(token string) (Session, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Session{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return Session{}, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	return Session{
		UID:           c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		Phone:         c.Phone,
		Token:         token,
	}, nil
}
