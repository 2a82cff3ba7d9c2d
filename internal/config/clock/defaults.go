// Package clock 时钟配置
package clock

import "time"

const (
	defaultType      = TypeSystem
	defaultNTPServer = "time.google.com"
)

var (
	defaultSyncInterval   = 5 * time.Minute
	defaultBackoffInitial = 5 * time.Second
	defaultBackoffMax     = 5 * time.Minute
)
