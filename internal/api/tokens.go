package api

// Tokens is the credential pair issued by the authentication endpoints.
// A pair is only usable when both halves are present.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether the pair can authorize requests and be refreshed.
func (t *Tokens) Valid() bool {
	return t != nil && t.AccessToken != "" && t.RefreshToken != ""
}

// tokenPayload accepts both field spellings the backend has emitted
// (snake_case and camelCase) for the token endpoints.
type tokenPayload struct {
	AccessToken     string `json:"access_token"`
	AccessTokenAlt  string `json:"accessToken"`
	RefreshToken    string `json:"refresh_token"`
	RefreshTokenAlt string `json:"refreshToken"`
}

// Tokens normalizes the payload into a credential pair.
// Returns nil when either token is missing.
func (p tokenPayload) Tokens() *Tokens {
	access := p.AccessToken
	if access == "" {
		access = p.AccessTokenAlt
	}
	refresh := p.RefreshToken
	if refresh == "" {
		refresh = p.RefreshTokenAlt
	}
	if access == "" || refresh == "" {
		return nil
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}
}
