package auth

// Provider kinds that finalize a session differently.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// Identity is the provider-independent shape of a signed-in user, built
// either from the credentials exchange with the backend or from an OAuth
// provider callback. It contains facts only, no decisions.
type Identity struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	AvatarURL     string   `json:"avatar_url"`
	AccessToken   string   `json:"access_token"`
	Provider      string   `json:"provider"`
	Organisations []string `json:"organisations,omitempty"`

	// OAuth tokens issued by the provider itself, if any.
	ProviderAccessToken  string `json:"-"`
	ProviderRefreshToken string `json:"-"`
	ProviderTokenExpiry  int64  `json:"-"`
}

// ProviderKind collapses the provider name into the kinds handled by the
// session finalizers: credentials, google, or anything else.
func (i *Identity) ProviderKind() string {
	switch i.Provider {
	case ProviderCredentials, ProviderGoogle:
		return i.Provider
	case "":
		return ProviderCredentials
	}
	return "other"
}
