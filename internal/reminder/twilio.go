package reminder

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/validators"
)

// TwilioSender sends WhatsApp messages through the Twilio Messages API.
type TwilioSender struct {
	rest *twilio.RestClient
	from string
}

// NewTwilioSender builds a sender on the Twilio SDK. A BaseURL other than
// the public API host redirects every call there, which is how staging
// mocks are reached.
func NewTwilioSender(cfg config.Twilio, httpClient *http.Client) *TwilioSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/")); err == nil && base.Host != "" && base.Host != "api.twilio.com" {
		hc := *httpClient
		hc.Transport = rebase{base: base, next: httpClient.Transport}
		httpClient = &hc
	}

	c := &twclient.Client{
		Credentials: twclient.NewCredentials(cfg.AccountSID, cfg.AuthToken),
		HTTPClient:  httpClient,
	}
	c.SetAccountSid(cfg.AccountSID)

	return &TwilioSender{
		rest: twilio.NewRestClientWithParams(twilio.ClientParams{Client: c}),
		from: strings.TrimPrefix(cfg.From, "+"),
	}
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(validators.WhatsAppAddress(to))
	params.SetFrom(validators.WhatsAppAddress(s.from))
	params.SetBody(body)

	if _, err := s.rest.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}

// ValidateSignature checks the X-Twilio-Signature of a form POST made to
// fullURL.
func ValidateSignature(authToken, fullURL string, params url.Values, signature string) bool {
	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	validator := twclient.NewRequestValidator(authToken)
	return validator.Validate(fullURL, flat, signature)
}

type rebase struct {
	base *url.URL
	next http.RoundTripper
}

func (t rebase) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.base.Scheme
	out.URL.Host = t.base.Host
	out.URL.Path = t.base.Path + req.URL.Path
	out.Host = t.base.Host

	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(out)
}
