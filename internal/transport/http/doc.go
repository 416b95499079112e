// Package http contains the HTTP handlers. The browser-facing handlers
// follow a post-redirect-get flow: mutations flash a message into the
// session and redirect, and GET renders the page with the drained
// messages. The JSON surface is limited to the health endpoint.
package http
