package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and role claims into the request
// context.  The provided secret must match the one used when issuing
// tokens.  This middleware should wrap protected routes so that handlers
// can access authenticated user information via `c.Get("user_id")` and
// `c.Get("role")`; both are stored as strings (the subject is the
// directory id, i.e. an email).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, role, ok := parseClaims(raw, secret)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Store the subject (user id) and role claims in the context.
			// Handlers and downstream middleware access them via c.Get().
			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}

// OptionalJWTAuth is JWTAuth for routes that must stay anonymous-safe:
// when a valid bearer token is present the claims are injected exactly as
// JWTAuth would, and when it is absent or invalid the request proceeds
// unauthenticated.  The scan endpoint uses this so equipment
// identification works for guests while attendance scans see the caller.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				if userID, role, ok := parseClaims(strings.TrimPrefix(auth, "Bearer "), secret); ok {
					c.Set("user_id", userID)
					c.Set("role", role)
				}
			}
			return next(c)
		}
	}
}

// parseClaims validates an HS256 token against the secret and extracts
// the string subject and role claims.
func parseClaims(raw, secret string) (userID, role string, ok bool) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", "", false
	}
	claims, okClaims := tok.Claims.(jwt.MapClaims)
	if !okClaims {
		return "", "", false
	}
	sub, okSub := claims["sub"].(string)
	r, okRole := claims["role"].(string)
	if !okSub || !okRole || sub == "" {
		return "", "", false
	}
	return sub, r, true
}
