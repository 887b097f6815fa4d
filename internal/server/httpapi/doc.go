// Package httpapi is the REST surface of the server: a gin router with the
// authentication gate, the avatar upload path and the user handlers. Every
// error response has the shape {"error": "<message>"}.
package httpapi
