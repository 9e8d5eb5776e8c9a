package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/freshcart-backend/api/responses"
	"github.com/angelmondragon/freshcart-backend/api/validators"
	"github.com/angelmondragon/freshcart-backend/internal/coupons"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
)

const maxCouponCodeLen = 64

// LookupCoupon resolves an active coupon by its code.
func LookupCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}
		code := validators.SanitizeCode(chi.URLParam(r, "code"), maxCouponCodeLen)
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"))
			return
		}
		coupon, err := svc.LookupCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}
