package ports

import "net/http"

// IdentityResolver resuelve el userId del caller a partir de la credencial
// del request (token de sesión o firma de wallet). El API depende solo de
// esta capacidad abstracta: exactamente un esquema concreto está activo por
// deployment. Un identificador pelado enviado por el cliente nunca es prueba
// de identidad.
type IdentityResolver interface {
	// ResolveUserID devuelve el userId verificado del request, o
	// domain.ErrUnauthenticated si no hay credencial resoluble.
	ResolveUserID(r *http.Request) (string, error)
}
