// Package transport converts between the chat platform's string-encoded
// callback payloads and the typed command set in core. Parsing happens
// exactly once at this boundary; the state machine never splits strings.
// The payload grammar is colon- and dash-delimited and stable, so existing
// inline keyboards keep working across deployments.
package transport
