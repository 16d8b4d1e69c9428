package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Cookies stores a player token split in two: the readable header and
// payload in "auth" and the HttpOnly signature in "sign".
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func NewCookies(jwt *JWT) *Cookies {
	return &Cookies{
		Domain:   os.Getenv("COOKIES_DOMAIN"),
		Secure:   os.Getenv("COOKIES_SECURE") != "0",
		SameSite: parseSameSite(os.Getenv("COOKIES_SAMESITE")),
		jwt:      jwt,
	}
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, httpOnly bool, expires time.Time, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	c.set(w, "auth", "delete", false, time.Time{}, -1)
	c.set(w, "sign", "delete", true, time.Time{}, -1)
}

// Issue signs a fresh token for the player and stores it in the response.
func (c *Cookies) Issue(w http.ResponseWriter, playerId int64, username string) error {
	token, err := c.jwt.Sign(playerId, username)
	if err != nil {
		return fmt.Errorf("unable to sign token: %w", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	expires := time.Now().Add(c.jwt.Lifetime())
	c.set(w, "auth", parts[0]+"."+parts[1], false, expires, 0)
	c.set(w, "sign", parts[2], true, expires, 0)
	return nil
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, err
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, err
	}
	return c.jwt.Parse(authCookie.Value + "." + signCookie.Value)
}
