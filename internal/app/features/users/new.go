// internal/app/features/users/new.go
package users

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/system/authutil"
	"github.com/dalemusser/stratagroups/internal/app/system/inputval"
	"github.com/dalemusser/stratagroups/internal/app/system/normalize"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type signUpInput struct {
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Name     string `json:"name" validate:"required,max=200" label:"Name"`
	Password string `json:"password"`
}

// HandleSignUp creates an account with a password.
// POST /users
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var in signUpInput
	if err := uierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode sign-up failed", err, "Invalid JSON body.")
		return
	}

	in.Email = normalize.Email(in.Email)
	in.Name = normalize.Name(in.Name)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "sign-up validation failed", nil, res.First())
		return
	}
	email, name := in.Email, in.Name
	if err := authutil.ValidatePassword(in.Password); err != nil {
		h.ErrLog.LogBadRequest(w, r, "sign-up password rejected", err, authutil.PasswordRules())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, email, name)
	if err != nil {
		h.ErrLog.HandleError(w, r, "create user failed", err)
		return
	}
	if err := h.Secrets.SetPassword(ctx, u.ID(), in.Password); err != nil {
		h.Log.Error("sign-up: user stored without password",
			zap.Error(err), zap.String("user_id", u.ID().Hex()))
		h.ErrLog.LogServerError(w, r, "set password failed", err, "Unable to save password.")
		return
	}
	h.AuditLog.UserCreated(ctx, r, u.ID(), u.Email())

	uierrors.WriteJSON(w, http.StatusCreated, u)
}
