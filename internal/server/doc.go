// Package server provides HTTP routing, middleware, and the web application
// for the playlist mirror.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Application
//
// [App] wires the session model, admin gate, handshake, mailer, and mirror
// engine into the route set:
//
//	GET  /                         landing page
//	GET  /login                    login form, or magic-link consumption with code+email
//	POST /login                    request a magic link (rate limited)
//	GET  /logout                   revoke the session
//	GET  /app                      session-gated application page
//	GET  /handshake                admin handshake initiation
//	GET  /adm-login                admin handshake completion
//	GET  /adm-logout               revoke the admin id
//	GET  /youtube-oauth2-callback  Google consent callback, persists the refresh token
//	GET  /run                      admin-gated mirror run
//
// Until the admin credential is provisioned, public routes short-circuit to a
// not-ready page. Authentication failures are uniformly opaque: the client
// learns that a request failed, never why.
//
// # OAuth Callback Handler
//
// [ConsentHandler] implements the one-shot OAuth2 authorization code callback
// used by the setup command: it validates the state parameter, exchanges the
// code, and delivers the token on a channel. It processes at most one
// callback.
package server
