// Package identity contiene los resolvers de identidad del API. Cada resolver
// verifica una credencial Bearer y deriva el userId de ella — nunca acepta un
// identificador pelado del cliente como prueba de identidad. Exactamente un
// resolver está activo por deployment.
package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// SessionResolver implementa ports.IdentityResolver con tokens de sesión JWT
// firmados con HMAC por el servicio de auth.
type SessionResolver struct {
	secret []byte
}

// NewSessionResolver crea el resolver con el secret compartido del servicio de auth.
func NewSessionResolver(secret string) (*SessionResolver, error) {
	if secret == "" {
		return nil, fmt.Errorf("identity.NewSessionResolver: session secret is required")
	}
	return &SessionResolver{secret: []byte(secret)}, nil
}

// ResolveUserID valida el JWT del header Authorization y devuelve su subject.
func (s *SessionResolver) ResolveUserID(r *http.Request) (string, error) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return "", err
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return "", domain.ErrUnauthenticated
	}

	return claims.Subject, nil
}

// bearerToken extrae el token del header Authorization.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", domain.ErrUnauthenticated
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", domain.ErrUnauthenticated
	}
	return parts[1], nil
}
