// Package validacion acumula errores de negocio por campo antes de ejecutar un caso de uso.
// Los errores de validación no abortan con error: se devuelven en el Resultado y el caso de uso no corre.
package validacion

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Resultado acumula mensajes de error por campo.
type Resultado struct {
	ErroresCampo map[string]string
}

// Nuevo construye un resultado vacío.
func Nuevo() *Resultado {
	return &Resultado{ErroresCampo: make(map[string]string)}
}

// Rechazar registra un error para el campo y devuelve false, para usar como "return r.Rechazar(...)".
// Conserva el primer mensaje de cada campo.
func (r *Resultado) Rechazar(campo, mensaje string) bool {
	if r.ErroresCampo == nil {
		r.ErroresCampo = make(map[string]string)
	}
	if _, ok := r.ErroresCampo[campo]; !ok {
		r.ErroresCampo[campo] = mensaje
	}
	return false
}

// TieneErrores indica si se registró al menos un error.
func (r *Resultado) TieneErrores() bool { return len(r.ErroresCampo) > 0 }

// Campos devuelve los campos con error en orden alfabético.
func (r *Resultado) Campos() []string {
	out := make([]string, 0, len(r.ErroresCampo))
	for k := range r.ErroresCampo {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var validate = nuevoValidador()

// nuevoValidador reporta los campos con su nombre JSON para que coincidan con el cuerpo HTTP.
func nuevoValidador() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Estructura aplica las etiquetas `validate` del DTO y vuelca cada falla en el resultado.
func Estructura(r *Resultado, dto any) bool {
	err := validate.Struct(dto)
	if err == nil {
		return true
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return r.Rechazar("general", err.Error())
	}
	for _, fe := range ves {
		campo := fe.Namespace()
		if i := strings.Index(campo, "."); i >= 0 {
			campo = campo[i+1:]
		}
		r.Rechazar(campo, mensajeEtiqueta(fe))
	}
	return false
}

func mensajeEtiqueta(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obligatorio"
	case "min":
		return "debe tener al menos " + fe.Param() + " elemento(s)"
	case "gt", "gte":
		return "debe ser mayor que " + fe.Param()
	case "oneof":
		return "valor no permitido"
	case "dive":
		return "elemento inválido"
	default:
		return "valor inválido (" + fe.Tag() + ")"
	}
}
