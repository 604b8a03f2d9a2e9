package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"

	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig selects how the acting user is resolved. With a signing secret
// only HS256 bearer tokens are accepted; without one the trusted gateway
// headers X-User-Id and X-User-Role are read.
type AuthConfig struct {
	JWTSecret string
}

type actorKey struct{}

type actorClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func withActor(ctx context.Context, actor entities.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFromContext(ctx context.Context) (entities.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(entities.Actor)
	return actor, ok
}

func (c AuthConfig) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := c.resolve(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error(), nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

func (c AuthConfig) resolve(r *http.Request) (entities.Actor, error) {
	if strings.TrimSpace(c.JWTSecret) != "" {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			return entities.Actor{}, errors.New("bearer token is required")
		}
		return authenticateJWT(token, c.JWTSecret)
	}

	actorID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if actorID == "" {
		return entities.Actor{}, errors.New("X-User-Id header is required")
	}
	role, err := parseRole(r.Header.Get("X-User-Role"))
	if err != nil {
		return entities.Actor{}, err
	}
	return entities.Actor{ActorID: actorID, Role: role}, nil
}

func authenticateJWT(token string, secret string) (entities.Actor, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &actorClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return entities.Actor{}, errors.New("invalid credentials")
	}
	if !parsed.Valid {
		return entities.Actor{}, errors.New("invalid credentials")
	}
	if claims.Subject == "" {
		return entities.Actor{}, errors.New("subject claim required")
	}
	role, err := parseRole(claims.Role)
	if err != nil {
		return entities.Actor{}, err
	}
	return entities.Actor{ActorID: claims.Subject, Role: role}, nil
}

// parseRole accepts only roles a caller may claim; the system role is
// reserved for internal consumers.
func parseRole(raw string) (entities.ActorRole, error) {
	role := entities.ActorRole(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case entities.ActorRoleBrand, entities.ActorRoleCreator, entities.ActorRoleOperations:
		return role, nil
	case "":
		return "", errors.New("actor role is required")
	default:
		return "", errors.New("unsupported actor role")
	}
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
