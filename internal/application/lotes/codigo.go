package lotes

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// nuevoCodigoLote deriva el código de negocio: L-<producto>-<yyMMdd>-<8 hex>.
func nuevoCodigoLote(productoCodigo string, fecha time.Time) string {
	return fmt.Sprintf("L-%s-%s-%s", productoCodigo, fecha.Format("060102"), sufijo())
}

// nuevoCodigoMovimiento: M-<yyMMddHHmmss>-<8 hex>.
func nuevoCodigoMovimiento(ahora time.Time) string {
	return fmt.Sprintf("M-%s-%s", ahora.Format("060102150405"), sufijo())
}

func sufijo() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
