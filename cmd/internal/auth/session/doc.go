// Package session implements taskboard's session lifecycle:
// issuance and verification of signed access tokens, generation of opaque
// refresh tokens, and the server-tracked multi-device session records they
// resolve against.
//
// Two trust levels are exposed on purpose. Access-token verification is
// purely cryptographic and never touches the store; refresh-token resolution
// is server-authoritative and honors logout immediately.
package session
