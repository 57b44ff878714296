// Package oauth2 maps provider userinfo responses onto account records.
package oauth2

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
)

// UserFromUserInfoURL decodes the userinfo response of the named provider
// into a db.User suitable for CreateUserWithOauth2. The caller owns the
// response; its body is consumed but not closed here.
//
// Providers that expose an email-verified flag must have it set; an address
// the provider has not verified cannot anchor an account.
func UserFromUserInfoURL(resp *http.Response, providerName string) (*db.User, error) {
	switch providerName {
	case config.OAuth2ProviderGoogle:
		return googleUser(resp)
	case config.OAuth2ProviderGitHub:
		return githubUser(resp)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func googleUser(resp *http.Response) (*db.User, error) {
	extracted := struct {
		Id            string `json:"sub"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}

	if !extracted.EmailVerified {
		return nil, fmt.Errorf("google email not verified")
	}

	return &db.User{
		ID:     extracted.Id,
		Email:  extracted.Email,
		Name:   extracted.Name,
		Avatar: extracted.Picture,
		Active: true,
		Oauth2: true,
	}, nil
}

func githubUser(resp *http.Response) (*db.User, error) {
	extracted := struct {
		Id        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		Email     string `json:"email"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode github user info: %w", err)
	}

	// GitHub hides the email unless the user made it public. The login flow
	// requests the user:email scope, but /user still omits private addresses.
	if extracted.Email == "" {
		return nil, fmt.Errorf("github email not available")
	}

	name := extracted.Name
	if name == "" {
		name = extracted.Login
	}

	return &db.User{
		ID:     fmt.Sprintf("%d", extracted.Id),
		Email:  extracted.Email,
		Name:   name,
		Avatar: extracted.AvatarURL,
		Active: true,
		Oauth2: true,
	}, nil
}
