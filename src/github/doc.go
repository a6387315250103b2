// Package github authenticates against the GitHub REST API as a GitHub App
// installation.
//
// Init validates the App credentials, fetches the App's own metadata once
// using an App JWT and returns a Client. Later requests made through the
// Client carry a short-lived installation token that is exchanged on first
// use and rotated before it expires.
package github
