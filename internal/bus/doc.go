// Package bus carries messages between the control panel and the player.
//
// Messages form a closed set of types implementing Message. Commands flow
// from the panel to the player and are routed with Dispatch, which calls
// one CommandHandler method per command type; events such as
// ExportProgress flow back.
//
// Bus is an in-process fan-out. Encode and Decode convert messages to and
// from a JSON envelope with a type tag:
//
//	{"type": "UPDATE_LYRICS_COLOR", "payload": {"color": "#ffcc00"}}
package bus
