package telephony

import (
	"errors"
	"net/http"
	"strconv"

	"call-cascade/internal/cascade"
	"call-cascade/internal/recordings"
	"call-cascade/pkg/logger"

	"github.com/gin-gonic/gin"
)

// VoiceWebhookHandler converts telephony platform webhooks to internal
// events, delegates to the cascade controller, and writes TwiML.
//
// No cascade logic here. Each invocation is stateless: the attempt index
// round-trips through the status-callback URL.

type VoiceWebhookHandler struct {
	Controller *cascade.Controller
	Recordings *recordings.Service
	URLs       CallbackURLs
}

// HandleInboundCall starts the cascade for a new inbound call.
func (h VoiceWebhookHandler) HandleInboundCall(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Controller == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "cascade controller not configured"})
		return
	}

	form, err := ParseInboundCall(c.Request)
	if err != nil {
		log.Warn("voice webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	d := h.Controller.StartCascade(c.Request.Context(), form.ToCallEvent())
	log.Info("cascade started",
		"call_sid", form.CallSid,
		"from", form.From,
		"directive", string(d.Kind),
		"attempt", d.AttemptIndex,
	)
	h.writeTwiML(c, d)
}

// HandleDialStatus advances the cascade with the outcome of the attempt
// identified by the attempt query parameter.
func (h VoiceWebhookHandler) HandleDialStatus(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Controller == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "cascade controller not configured"})
		return
	}

	idx, err := AttemptIndex(c.Request)
	if err != nil {
		log.Warn("dial status callback with bad attempt index", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid attempt index"})
		return
	}

	form, err := ParseDialStatus(c.Request)
	if err != nil {
		log.Warn("dial status parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	d, err := h.Controller.AdvanceCascade(c.Request.Context(), cascade.OutcomeEvent{
		CallEvent:    form.ToCallEvent(),
		AttemptIndex: idx,
		DialStatus:   form.DialCallStatus,
	})
	if err != nil {
		if errors.Is(err, cascade.ErrAttemptOutOfRange) {
			log.Warn("dial status callback rejected", "attempt", idx, "err", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "attempt index out of range"})
			return
		}
		log.Error("cascade advance failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "cascade failed"})
		return
	}

	log.Info("cascade advanced",
		"call_sid", form.CallSid,
		"attempt", idx,
		"dial_status", form.DialCallStatus,
		"directive", string(d.Kind),
	)
	h.writeTwiML(c, d)
}

// HandleRecording stores voicemail metadata. Passive sink: storage
// failures are logged and the call-control response is unaffected.
func (h VoiceWebhookHandler) HandleRecording(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseRecording(c.Request)
	if err != nil {
		log.Warn("recording callback parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	if h.Recordings != nil {
		duration, _ := strconv.Atoi(form.RecordingDuration)
		_, err := h.Recordings.Store(c.Request.Context(), recordings.StoreInput{
			CallSID:           form.CallSid,
			From:              form.From,
			RecordingSID:      form.RecordingSid,
			URL:               form.RecordingURL,
			DurationSeconds:   duration,
			TranscriptionText: form.TranscriptionText,
		})
		if err != nil {
			log.Warn("recording store failed", "call_sid", form.CallSid, "err", err)
		} else {
			log.Info("recording stored", "call_sid", form.CallSid, "duration", duration)
		}
	}

	twiml, err := RenderHangup()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}

func (h VoiceWebhookHandler) writeTwiML(c *gin.Context, d cascade.Directive) {
	log := logger.FromGin(c)
	twiml, err := RenderTwiML(d, h.URLs)
	if err != nil {
		log.Error("twiml render failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}
