package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTask     = "task"
	KeyTaskID   = "task_id"
	KeyCommand  = "command"
	KeyExitCode = "exit_code"
	KeyPath     = "path"
	KeyError    = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Task(name string) slog.Attr   { return slog.String(KeyTask, name) }
func TaskID(id string) slog.Attr   { return slog.String(KeyTaskID, id) }
func Command(cmd string) slog.Attr { return slog.String(KeyCommand, cmd) }
func ExitCode(code int) slog.Attr  { return slog.Int(KeyExitCode, code) }
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
