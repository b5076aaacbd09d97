// Package tokensource provides an in-memory Zoho access token cache backed by the
// OAuth2 refresh-token grant.
//
// Refresh is purely reactive: a token is minted when the cache is empty or when a
// caller observed a 401 and asks for a new one. There is no expiry timer.
//
// Zoho's refresh grant deviates from golang.org/x/oauth2 in one way that requires
// custom handling:
//   - The token endpoint expects redirect_uri alongside the refresh token, which the
//     oauth2 refresh flow never sends. A request-rewriting transport adds it.
//
// # Usage
//
//	p, err := tokensource.NewProvider(tokensource.Credentials{...})
//	client := &http.Client{Transport: &oauth2.Transport{Source: p}}
//
// Provider implements oauth2.TokenSource, so outbound requests carry
// "Authorization: Zoho-oauthtoken <token>".
package tokensource
