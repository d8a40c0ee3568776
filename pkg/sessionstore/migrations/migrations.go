// Package migrations holds the embedded SQL migrations for the session
// store. They are compiled into the binary and applied through the iofs
// source driver.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
