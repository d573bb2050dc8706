// Package identidad resuelve el usuario actual que firma cada movimiento.
package identidad

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
)

type ctxKey struct{}

// WithUsuario devuelve un contexto que lleva el ID del usuario autenticado.
func WithUsuario(ctx context.Context, usuarioID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, usuarioID)
}

// UsuarioDesdeContexto extrae el usuario cargado por WithUsuario.
func UsuarioDesdeContexto(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)
	return v, ok && v != ""
}

// Contexto resuelve el usuario desde el contexto de la petición (middleware JWT).
type Contexto struct{}

// CurrentUser implementa lotes.IdentityProvider.
func (Contexto) CurrentUser(ctx context.Context) (string, error) {
	if u, ok := UsuarioDesdeContexto(ctx); ok {
		return u, nil
	}
	return "", domain.ErrUnauthorized
}

// Fijo siempre devuelve el mismo usuario (procesos programados y tests).
type Fijo string

// CurrentUser implementa lotes.IdentityProvider.
func (f Fijo) CurrentUser(ctx context.Context) (string, error) {
	if u, ok := UsuarioDesdeContexto(ctx); ok {
		return u, nil
	}
	return string(f), nil
}
