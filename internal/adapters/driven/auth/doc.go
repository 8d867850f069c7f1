// Package auth provides driven.TokenProvider implementations for the
// log backend: no authentication, a static bearer token, and the OAuth2
// client credentials grant. It also adapts a TokenProvider to an
// oauth2.TokenSource so HTTP clients can attach tokens transparently.
package auth
