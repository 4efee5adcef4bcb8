//go:build !cgo_sqlite

package sqlitedb

import _ "modernc.org/sqlite"

const driverName = "sqlite"
