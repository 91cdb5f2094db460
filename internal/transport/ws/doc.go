// Package ws bridges remote keyboards to hotkeys over WebSocket.
//
// A browser or other client connects to /ws and streams its key events:
//
//	{"type":"keydown","key":"Control","target":""}
//	{"type":"keyup","key":"k"}
//
// Every connection gets its own hotkey.Hotkeys built from the keymap.
// When a combination matches, the server answers with the bound action,
// and it reports the active indicator as it is set and cleared:
//
//	{"type":"action","action":"palette.open","description":"Open command palette"}
//	{"type":"active","active":"control+k","labels":["CONTROL","K"]}
//	{"type":"active","active":"","labels":[]}
//
// On connect, and whenever the keymap is replaced, the server sends the
// full binding list as a "bindings" frame so the client can render its
// own shortcut hints. Frames that cannot be decoded are logged, answered
// with an "error" frame, and skipped.
package ws
