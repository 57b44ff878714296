package tidings

import (
	"net/http"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/core"
)

// route registers every API endpoint on the app router. Patterns come from
// the config so deployments can remap paths without touching code.
func route(cfg *config.Config, app *core.App) {
	r := app.Router()

	ep := cfg.Endpoints

	r.HandleFunc(ep.RegisterWithPassword, app.RegisterWithPasswordHandler)
	r.HandleFunc(ep.AuthWithPassword, app.AuthWithPasswordHandler)
	r.HandleFunc(ep.AuthRefresh, app.RefreshAuthHandler)
	r.HandleFunc(ep.RefreshSessionClaims, app.RefreshSessionClaimsHandler)

	r.HandleFunc(ep.RequestEmailVerification, app.RequestEmailVerificationHandler)
	r.HandleFunc(ep.ConfirmEmailVerification, app.ConfirmEmailVerificationHandler)

	r.HandleFunc(ep.RequestPasswordReset, app.RequestPasswordResetHandler)
	r.HandleFunc(ep.ConfirmPasswordReset, app.ConfirmPasswordResetHandler)

	r.HandleFunc(ep.RequestMagicLink, app.RequestMagicLinkHandler)
	r.HandleFunc(ep.AuthWithMagicLink, app.AuthWithMagicLinkHandler)

	r.HandleFunc(ep.RequestOtp, app.RequestOtpHandler)
	r.HandleFunc(ep.ConfirmOtp, app.ConfirmOtpHandler)

	r.HandleFunc(ep.ChangePassword, app.ChangePasswordHandler)

	r.HandleFunc(ep.AuthWithOAuth2, app.AuthWithOAuth2Handler)
	r.HandleFunc(ep.ListOAuth2Providers, app.ListOAuth2ProvidersHandler)

	r.HandleFunc(ep.RequestEmailChange, app.RequestEmailChangeHandler)
	r.HandleFunc(ep.ConfirmEmailChange, app.ConfirmEmailChangeHandler)

	r.HandleFunc(ep.ListNotifications, app.ListNotificationsHandler)
	r.HandleFunc(ep.MarkNotificationsRead, app.MarkNotificationsReadHandler)

	r.Handle("GET /favicon.ico", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}
