package main

import (
	"call-cascade/internal/auth"
	"call-cascade/internal/cascade"
	"call-cascade/internal/config"
	"call-cascade/internal/httpapi"
	"call-cascade/internal/notify"
	"call-cascade/internal/rbac"
	"call-cascade/internal/recordings"
	"call-cascade/internal/telephony"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	cfg        config.Config
	auth       *auth.Manager
	controller *cascade.Controller
	recordings *recordings.Service
	notifier   *notify.Dispatcher
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	api := httpapi.Handlers{
		Auth:            deps.auth,
		Recordings:      deps.recordings,
		Plan:            deps.controller.Plan(),
		NotifierEnabled: deps.notifier.Enabled(),
	}

	// public
	r.GET("/healthz", api.Healthz)

	// Provider webhooks (public, signature-validated when a token is set).
	{
		h := telephony.VoiceWebhookHandler{
			Controller: deps.controller,
			Recordings: deps.recordings,
			URLs:       telephony.CallbackURLs{Base: deps.cfg.Cascade.PublicBaseURL},
		}
		sig := telephony.RequireTwilioSignature(deps.cfg.Twilio.AuthToken, deps.cfg.Cascade.PublicBaseURL)

		r.POST(telephony.PathVoice, sig, h.HandleInboundCall)
		r.POST(telephony.PathDialStatus, sig, h.HandleDialStatus)
		r.POST(telephony.PathRecording, sig, h.HandleRecording)
	}

	// protected API group
	v1 := r.Group("/v1")
	{
		v1.POST("/auth/token", api.Login)

		protected := v1.Group("")
		protected.Use(auth.RequireAccessToken(deps.auth))
		protected.Use(rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleAdmin))
		{
			protected.GET("/recordings", api.ListRecordings)
			protected.GET("/cascade", api.GetCascadePlan)
		}
	}
}
