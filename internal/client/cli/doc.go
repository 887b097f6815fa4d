// Package cli provides the interactive gophusers command-line client.
//
// It wires configuration, the local session store and the REST API client
// into a REPL. A session saved by a previous run is picked up on start, so a
// user stays logged in until logout, logoutall or delete.
//
// Commands: register, login, me, update, avatar, rmavatar, getavatar,
// logout, logoutall, delete, help, exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
