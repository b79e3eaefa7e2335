package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Staff sessions are short-lived HS256 JWTs minted after a back-office key
// login, carried in a cookie (browser) or a bearer header (scripts).

const (
	staffCookie   = "staff_session"
	sessionIssuer = "gym-membership-service"
)

type SessionManager struct {
	secret []byte
	domain string
	secure bool
	ttl    time.Duration
}

func NewSessionManager(secret string, secure bool, domain string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), domain: domain, secure: secure, ttl: ttl}
}

// StaffClaims is the session payload. Role is fixed to "staff" for now; it
// rides in the token so finer-grained back-office roles slot in later.
type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue mints a session token and sets it as the staff cookie. The signed
// token is also returned for clients that prefer the bearer header.
func (s *SessionManager) Issue(w http.ResponseWriter) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, StaffClaims{
		Role: "staff",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   "back-office",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, s.cookie(signed, int(s.ttl.Seconds())))
	return signed, nil
}

// Revoke expires the staff cookie. An already-issued JWT stays valid until
// its expiry; the short ttl bounds that window.
func (s *SessionManager) Revoke(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     staffCookie,
		Value:    value,
		Path:     "/",
		Domain:   s.domain, // "" keeps the cookie host-only
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// FromRequest validates the session from the bearer header or, failing that,
// the staff cookie. A present but non-bearer Authorization header is rejected
// rather than falling through to the cookie.
func (s *SessionManager) FromRequest(r *http.Request) (*StaffClaims, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		tok, ok := strings.CutPrefix(hdr, "Bearer ")
		if !ok {
			return nil, errors.New("malformed authorization header")
		}
		return s.validate(strings.TrimSpace(tok))
	}
	if c, err := r.Cookie(staffCookie); err == nil {
		return s.validate(c.Value)
	}
	return nil, errors.New("no session")
}

func (s *SessionManager) validate(tok string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
