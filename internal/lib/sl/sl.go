// Package sl содержит атрибуты slog, общие для всех пакетов сервиса.
package sl

import "log/slog"

// Err атрибут "error" с текстом ошибки. Для nil пишет "<nil>".
//
//	log.Error("failed to save payment", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}
