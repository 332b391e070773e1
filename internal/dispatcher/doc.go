// Package dispatcher runs the interactive command loop of a query session.
//
// Each input line is either a control command (exit, list, storage, export)
// or a query. Queries are compiled by package query and executed against the
// session's channel and binding environment. A failing command is reported
// as "Error: ..." and the loop carries on; only a lost channel ends it early.
package dispatcher
