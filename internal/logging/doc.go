// Package logging builds the slog loggers used by the player, the exporter
// and the command line tools.
//
// New selects a console (text) or JSON handler, sets the level and routes
// output to stdout, stderr or log files. Components receive the resulting
// *slog.Logger and add their own "component" and "session" attributes.
//
// ProgressSampler keeps progress logs readable by passing a report only when
// its stage changes or its percentage reaches the next step.
package logging
