package handlers

import (
	"errors"
	"net/http"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/handlers/render"
	"github.com/cardrip/cardrip/internal/logger"
)

func handleRegister(operatorService operatorService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		_, err = operatorService.Register(r.Context(), data.Username, data.Password)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{Message: "Operator registered successfully"}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrOperatorAlreadyExists):
			render.ServiceError(w, "Operator already exists", http.StatusConflict)
		default:
			l.Error("Failed to register operator", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(operatorService operatorService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Token string `json:"token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, err := operatorService.Login(r.Context(), data.Username, data.Password)

		switch {
		case err == nil:
			render.JSON(w, response{Token: token})
		case errors.Is(err, apperrors.ErrOperatorNotFound):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			l.Error("Failed to login operator", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
