package middleware

import (
	"context"
	"net/http"

	"github.com/cardrip/cardrip/internal/handlers/opctx"
	"github.com/cardrip/cardrip/internal/handlers/render"
	"github.com/cardrip/cardrip/internal/models"
)

type operatorService interface {
	Auth(ctx context.Context, r *http.Request) (models.Operator, error)
}

func AuthMiddleware(os operatorService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, err := os.Auth(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			markOperator(r.Context(), op.ID.String())
			next.ServeHTTP(w, r.WithContext(opctx.New(r.Context(), op)))
		})
	}
}
