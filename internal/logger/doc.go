// Package logger wraps zap to give every pipeline phase a console logger
// carried through context.Context.
//
// Services call WithName/WithKV to scope entries and the Debug/Info/Warn/Error
// helpers to emit them. The shared level is adjusted with SetLevel after the
// CLI parses --log-level.
package logger
