package core

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/crypto"
	"github.com/tidings-app/tidings/db"
	oauth2provider "github.com/tidings-app/tidings/oauth2"
	"golang.org/x/oauth2"
)

// oauth2TokenExchangeTimeout caps the token exchange round trip so an
// unresponsive provider cannot hang the handler.
const oauth2TokenExchangeTimeout = 10 * time.Second

// OAuth2ProviderInfo contains the provider details needed for client-side OAuth2 flow
type OAuth2ProviderInfo struct {
	Name                string `json:"name"`
	DisplayName         string `json:"displayName"`
	State               string `json:"state"`
	AuthURL             string `json:"authURL"`
	RedirectURL         string `json:"redirectURL"`
	CodeVerifier        string `json:"codeVerifier,omitempty"`
	CodeChallenge       string `json:"codeChallenge,omitempty"`
	CodeChallengeMethod string `json:"codeChallengeMethod,omitempty"`
}

// OAuth2ProviderListData wraps the list of providers for standardized response
type OAuth2ProviderListData struct {
	Providers []OAuth2ProviderInfo `json:"providers"`
}

// redirectUrl resolves the provider redirect: an absolute RedirectURL wins,
// otherwise the path is joined to the server base URL.
func redirectUrl(server config.Server, provider config.OAuth2Provider) string {
	if provider.RedirectURL != "" {
		return provider.RedirectURL
	}
	return server.BaseURL + provider.RedirectURLPath
}

// AuthWithOAuth2Handler handles OAuth2 authentication
// Endpoint: POST /api/auth-with-oauth2
// Authenticated: No
// Allowed Mimetype: application/json
//
// First sign-in creates the account; the provider already verified the
// address, so the record is active immediately. The read-then-write below
// avoids a transaction: with SQLite's single writer and the UNIQUE email
// index, CreateUserWithOauth2 resolves concurrent first sign-ins by letting
// the loser's upsert keep the winner's fields.
func (a *App) AuthWithOAuth2Handler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Provider     string `json:"provider"`
		Code         string `json:"code"`
		CodeVerifier string `json:"code_verifier"`
		RedirectURI  string `json:"redirect_uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Provider == "" || req.Code == "" || req.CodeVerifier == "" || req.RedirectURI == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	cfg := a.Config()
	provider, ok := cfg.OAuth2Providers[req.Provider]
	if !ok {
		writeJsonError(w, errorInvalidOAuth2Provider)
		return
	}

	oauth2Config := oauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		RedirectURL:  req.RedirectURI,
		Scopes:       provider.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.AuthURL,
			TokenURL: provider.TokenURL,
		},
	}

	ctx, cancel := context.WithTimeout(r.Context(), oauth2TokenExchangeTimeout)
	defer cancel()

	token, err := oauth2Config.Exchange(
		ctx,
		req.Code,
		oauth2.SetAuthURLParam("code_verifier", req.CodeVerifier),
	)
	if err != nil {
		writeJsonError(w, errorOAuth2TokenExchangeFailed)
		return
	}

	client := oauth2Config.Client(ctx, token)
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		writeJsonError(w, errorOAuth2UserInfoFailed)
		return
	}
	defer resp.Body.Close()

	oauthUser, err := oauth2provider.UserFromUserInfoURL(resp, provider.Name)
	if err != nil {
		a.Logger().Debug("failed to map provider user info", "error", err, "provider", provider.Name)
		writeJsonError(w, errorOAuth2UserInfoProcessingFailed)
		return
	}

	if err := ValidateEmail(oauthUser.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(oauthUser.Email)
	if err != nil {
		writeJsonError(w, errorOAuth2DatabaseError)
		return
	}

	if user == nil || !user.Oauth2 {
		user, err = a.DbAuth().CreateUserWithOauth2(*oauthUser)
		if err != nil {
			writeJsonError(w, errorOAuth2DatabaseError)
			return
		}
	}

	jwtToken, expiresIn, err := a.newSessionToken(user)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	a.recordNotification(user.ID, db.NotificationLogin, "New sign-in with "+provider.DisplayName+".")

	writeAuthResponse(w, jwtToken, expiresIn, user)
}

// ListOAuth2ProvidersHandler returns available OAuth2 providers
// Endpoint: GET /api/list-oauth2-providers
// Authenticated: No
//
// Example response data:
//
//	{
//	  "providers": [
//	    {
//	      "name": "google",
//	      "displayName": "Google",
//	      "state": "random-state-string",
//	      "authURL": "https://..."
//	    }
//	  ]
//	}
func (a *App) ListOAuth2ProvidersHandler(w http.ResponseWriter, r *http.Request) {
	var providers []OAuth2ProviderInfo

	cfg := a.Config()
	for name, provider := range cfg.OAuth2Providers {

		rUrl := redirectUrl(cfg.Server, provider)
		state := crypto.Oauth2State()
		oauth2Config := oauth2.Config{
			ClientID:     provider.ClientID,
			ClientSecret: provider.ClientSecret,
			RedirectURL:  rUrl,
			Scopes:       provider.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  provider.AuthURL,
				TokenURL: provider.TokenURL,
			},
		}

		info := OAuth2ProviderInfo{
			Name:        name,
			DisplayName: provider.DisplayName,
			State:       state,
			RedirectURL: rUrl,
		}

		if provider.PKCE {
			codeVerifier := crypto.Oauth2CodeVerifier()
			codeChallenge := crypto.S256Challenge(codeVerifier)
			info.AuthURL = oauth2Config.AuthCodeURL(state,
				oauth2.SetAuthURLParam("code_challenge", codeChallenge),
				oauth2.SetAuthURLParam("code_challenge_method", crypto.PKCECodeChallengeMethod),
			)
			info.CodeVerifier = codeVerifier
			info.CodeChallenge = codeChallenge
			info.CodeChallengeMethod = crypto.PKCECodeChallengeMethod
		} else {
			info.AuthURL = oauth2Config.AuthCodeURL(state)
		}

		providers = append(providers, info)
	}

	if len(providers) == 0 {
		writeJsonError(w, errorInvalidOAuth2Provider)
		return
	}

	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkOAuth2ProvidersList,
			Message: "OAuth2 providers list",
		},
		Data: OAuth2ProviderListData{Providers: providers},
	}
	writeJsonWithData(w, response)
}
