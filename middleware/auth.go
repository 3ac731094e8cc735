package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session key under which the logged-in player's username is stored.
const userkey = "Username"

// ErrNoSession is returned by ClearSession when the request carries no
// session, as with clients that authenticate by Bearer token only.
var ErrNoSession = errors.New("no session")

// AuthRequired guards the /auth group. A request is authenticated either
// by the session cookie established at login or by a Bearer token from
// the same login response. Unauthenticated access is rejected with 401
// and a pointer back to the login entry point.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	if user := session.Get(userkey); user != nil {
		c.Set("username", user.(string))
		c.Next()
		return
	}

	// Cookie-less API clients authenticate with the JWT instead
	if username, err := DecodeToken(c); err == nil {
		c.Set("username", username)
		c.Next()
		return
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "unauthorized",
		"next":  "/login?next=" + c.Request.URL.Path,
	})
}

// CurrentUsername returns the authenticated player's username for this
// request. Only meaningful behind AuthRequired.
func CurrentUsername(c *gin.Context) (string, error) {
	if username, ok := c.Get("username"); ok {
		return username.(string), nil
	}
	session := sessions.Default(c)
	if user := session.Get(userkey); user != nil {
		return user.(string), nil
	}
	return "", errors.New("no authenticated player in request context")
}

// SaveSession stores the username in the request's session cookie.
func SaveSession(c *gin.Context, username string) error {
	session := sessions.Default(c)
	session.Set(userkey, username)
	return session.Save()
}

// ClearSession removes the username from the request's session cookie.
// Returns ErrNoSession when there was no session to clear.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	if session.Get(userkey) == nil {
		return ErrNoSession
	}
	session.Delete(userkey)
	return session.Save()
}
