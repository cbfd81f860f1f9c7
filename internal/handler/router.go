package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	formHandler "github.com/jinseok-oh/minwon-kiosk/internal/handler/form"
	inquiryHandler "github.com/jinseok-oh/minwon-kiosk/internal/handler/inquiry"
	middlewarePkg "github.com/jinseok-oh/minwon-kiosk/internal/middleware"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/classifier"
	formService "github.com/jinseok-oh/minwon-kiosk/internal/service/form"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/guidance"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/session"
	"github.com/jinseok-oh/minwon-kiosk/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(classifierSvc *classifier.Service, guidanceSvc *guidance.Service, sessions *session.Store, formSvc *formService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	inquiryHandler.New(classifierSvc, guidanceSvc, sessions).RegisterRoutes(r)

	// Form flow is optional: it only mounts when the service was built.
	if formSvc != nil {
		formHandler.New(formSvc).RegisterRoutes(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
