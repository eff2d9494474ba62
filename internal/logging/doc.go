// Package logging builds the bot's slog loggers.
//
// Two handlers are available: a JSON handler for log collectors and a
// console handler that renders "TS LEVEL component: msg key=value" lines.
// The "auto" format picks the console handler when stderr is a terminal.
package logging
