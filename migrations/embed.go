// Package migrations expone el DDL de PostgreSQL embebido en el binario.
package migrations

import "embed"

// FS contiene los scripts .sql en orden lexicográfico de aplicación.
//
//go:embed *.sql
var FS embed.FS
