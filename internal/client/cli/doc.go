// Package cli provides the interactive notekeeper command-line client.
//
// The root command starts a REPL: sign in, browse and search notes, open a
// note, run the AI analyses on it and hover the inline annotations. While
// signed in, the note list and the open note refresh in the background and
// server change events trigger an immediate refresh.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
