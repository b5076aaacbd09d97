package tokensource

const (
	// TokenType is the authorization scheme Zoho expects in place of "Bearer".
	TokenType = "Zoho-oauthtoken"

	// DefaultAuthURL is the token endpoint of the Zoho accounts server for the India data centre.
	DefaultAuthURL = "https://accounts.zoho.in/oauth/v2/token"
)
