// Package tokenstore resolves the long-lived OAuth2 refresh token used to mint
// Zoho access tokens.
//
// Three read-only backends are supported:
//   - Env: an environment variable (suits container deployments with injected secrets)
//   - File: a local file that must be readable by the owner only (0600)
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, etc.)
//
// Stores are consulted once at startup. Access tokens are never written back.
package tokenstore
