package logging

import "log/slog"

// The helpers below accept a nil logger so components can run unconfigured
// in tests.

// With is logger.With for a possibly nil logger.
func With(logger *slog.Logger, args ...any) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(args...)
}

func Info(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

func Warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error appends err under FieldError when it is non-nil.
func Error(logger *slog.Logger, msg string, err error, args ...any) {
	if logger == nil {
		return
	}
	if err != nil {
		args = append(args, slog.Any(FieldError, err))
	}
	logger.Error(msg, args...)
}

func Debug(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
