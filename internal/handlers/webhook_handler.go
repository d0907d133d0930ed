package handlers

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/messages"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/reminder"
	ucBooking "github.com/BruksfildServices01/barbershop-booking/internal/usecase/booking"
)

type ReplyHandler interface {
	Execute(ctx context.Context, from, text string) (*ucBooking.ReplyOutput, error)
}

// WebhookHandler receives inbound WhatsApp messages from Twilio.
type WebhookHandler struct {
	reply      ReplyHandler
	authToken  string
	webhookURL string
	log        *slog.Logger
	metrics    *metrics.Metrics
}

// NewWebhookHandler builds the handler. Every request must carry a valid
// Twilio signature, so an empty authToken rejects all of them. webhookURL
// overrides the URL reconstructed from the request, which is needed behind
// proxies.
func NewWebhookHandler(
	reply ReplyHandler,
	authToken, webhookURL string,
	log *slog.Logger,
	m *metrics.Metrics,
) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		reply:      reply,
		authToken:  authToken,
		webhookURL: webhookURL,
		log:        log,
		metrics:    m,
	}
}

type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

func (h *WebhookHandler) WhatsApp(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		httperr.BadRequest(c, "invalid_request", "Formulário inválido.")
		return
	}

	if h.authToken == "" {
		httperr.Write(c, http.StatusServiceUnavailable, "webhook_disabled", "Webhook indisponível.")
		return
	}
	signature := c.GetHeader("X-Twilio-Signature")
	if !reminder.ValidateSignature(h.authToken, h.signedURL(c), c.Request.PostForm, signature) {
		httperr.Write(c, http.StatusForbidden, "invalid_signature", "Assinatura inválida.")
		return
	}

	from := c.Request.PostForm.Get("From")
	body := c.Request.PostForm.Get("Body")

	out, err := h.reply.Execute(c.Request.Context(), from, body)
	if err != nil {
		code, ok := httperr.BusinessCode(err)
		if !ok {
			writeError(c, err)
			return
		}

		h.log.Info("whatsapp reply not applied", "code", code)
		msg := messages.ReplyNoBooking
		if code == "unrecognized_reply" {
			msg = messages.ReplyUnrecognized
		}
		c.XML(http.StatusOK, twiml{Message: msg})
		return
	}

	if h.metrics != nil {
		h.metrics.StatusChanges.WithLabelValues(string(out.Status), "whatsapp").Inc()
	}
	h.log.Info("whatsapp reply applied", "booking_id", out.Booking.ID, "status", out.Status)
	c.XML(http.StatusOK, twiml{Message: out.Message})
}

func (h *WebhookHandler) signedURL(c *gin.Context) string {
	if h.webhookURL != "" {
		return h.webhookURL
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}
