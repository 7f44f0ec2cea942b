// Package migrations 内嵌 PostgreSQL 结构迁移脚本
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
