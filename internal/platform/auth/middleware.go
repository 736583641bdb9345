package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserTypeKey  contextKey = "user_type"
	UserRoleKey  contextKey = "user_role"
	PatientIDKey contextKey = "patient_id"
)

// Principal types carried in the "type" claim.
const (
	TypeDoctor  = "doctor"
	TypePatient = "patient"
)

// Staff roles carried in the "role" claim.
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
	RoleNurse  = "nurse"
)

type Claims struct {
	jwt.RegisteredClaims
	Type      string `json:"type,omitempty"`
	Role      string `json:"role,omitempty"`
	PatientID string `json:"patientId,omitempty"`
}

type JWTConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	// Skipper lets a request through untouched when it returns true.
	Skipper func(c echo.Context) bool
}

// JWTMiddleware validates an HS256 bearer token and stores the principal on
// the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return cfg.SigningKey, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := parser.ParseWithClaims(strings.TrimSpace(tokenStr), claims, keyFunc)
			if err != nil || !token.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// Staff tokens issued before the type claim existed only carry a role.
			principalType := claims.Type
			if principalType == "" && claims.Role != "" {
				principalType = TypeDoctor
			}

			setPrincipal(c, claims.Subject, principalType, claims.Role, claims.PatientID)
			return next(c)
		}
	}
}

// DevAuthMiddleware acts as devDoctorID for requests that carry no
// Authorization header. Requests with a header are left for JWTMiddleware.
func DevAuthMiddleware(devDoctorID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" && devDoctorID != "" {
				setPrincipal(c, devDoctorID, TypeDoctor, RoleDoctor, "")
			}
			return next(c)
		}
	}
}

// Authenticated reports whether a principal was already attached. It is the
// Skipper that lets JWTMiddleware run after DevAuthMiddleware.
func Authenticated(c echo.Context) bool {
	return UserIDFromContext(c.Request().Context()) != ""
}

func setPrincipal(c echo.Context, userID, principalType, role, patientID string) {
	c.Set("user_id", userID)

	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, UserTypeKey, principalType)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	ctx = context.WithValue(ctx, PatientIDKey, patientID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func TypeFromContext(ctx context.Context) string {
	t, _ := ctx.Value(UserTypeKey).(string)
	return t
}

func RoleFromContext(ctx context.Context) string {
	r, _ := ctx.Value(UserRoleKey).(string)
	return r
}

// PatientIDFromContext returns the patientId claim, falling back to the
// subject for patient principals whose token omits it.
func PatientIDFromContext(ctx context.Context) string {
	if pid, _ := ctx.Value(PatientIDKey).(string); pid != "" {
		return pid
	}
	if TypeFromContext(ctx) == TypePatient {
		return UserIDFromContext(ctx)
	}
	return ""
}

// WithPrincipal returns ctx carrying the given identity. Tests and internal
// callers use it to act as a user without a token.
func WithPrincipal(ctx context.Context, userID, principalType, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, UserTypeKey, principalType)
	return context.WithValue(ctx, UserRoleKey, role)
}
