// internal/app/features/account/routes.go
package account

import "github.com/go-chi/chi/v5"

// Routes returns the /account subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.Post("/password-reset", h.HandleResetRequest)
	r.Post("/password-reset/confirm", h.HandleResetConfirm)

	r.Group(func(r chi.Router) {
		r.Use(h.SessionMgr.RequireSignedIn)
		r.Get("/me", h.ServeMe)
		r.Patch("/me", h.HandleUpdateMe)
		r.Delete("/me", h.HandleDeleteMe)
	})
	return r
}
