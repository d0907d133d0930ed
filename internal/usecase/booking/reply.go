package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/messages"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/validators"
)

type ReplyOutput struct {
	Booking *models.Booking
	Status  domain.Status
	// Message is the text to send back to the client.
	Message string
}

// ReplyToConfirmation applies a client's SIM/NÃO answer to the latest
// pending upcoming booking for their phone number.
type ReplyToConfirmation struct {
	repo   domain.Repository
	policy Policy
	cache  SlotCache
	audit  *audit.Dispatcher
	now    func() time.Time
}

func NewReplyToConfirmation(
	repo domain.Repository,
	policy Policy,
	cache SlotCache,
	audit *audit.Dispatcher,
) *ReplyToConfirmation {
	if cache == nil {
		cache = NoCache{}
	}
	return &ReplyToConfirmation{
		repo:   repo,
		policy: policy,
		cache:  cache,
		audit:  audit,
		now:    time.Now,
	}
}

func (uc *ReplyToConfirmation) Execute(ctx context.Context, from, text string) (*ReplyOutput, error) {
	phone, ok := validators.NormalizePhone(from, uc.policy.CountryCode)
	if !ok {
		return nil, httperr.ErrBusiness("invalid_phone")
	}

	to, ok := ParseReply(text)
	if !ok {
		return nil, httperr.ErrBusiness("unrecognized_reply")
	}

	now := uc.now()
	b, err := uc.repo.FindLatestPendingByPhone(ctx, phone, now)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	if err != nil {
		return nil, fmt.Errorf("find pending booking: %w", err)
	}

	if err := applyTransition(ctx, uc.repo, uc.cache, uc.policy, b, to, now); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.EntityEvent(nil, "booking_"+string(to), "booking", b.ID, map[string]any{
		"via": "whatsapp",
	}))

	d := messages.For(b, uc.policy.Zone.Location())
	msg := messages.ReplyConfirmed(d)
	if to == domain.StatusCancelled {
		msg = messages.ReplyCancelled(d)
	}

	return &ReplyOutput{Booking: b, Status: to, Message: msg}, nil
}

// ParseReply maps a free-text answer to the requested status.
func ParseReply(text string) (domain.Status, bool) {
	word := strings.ToUpper(strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))

	switch word {
	case "SIM", "S":
		return domain.StatusConfirmed, true
	case "NÃO", "NAO", "N":
		return domain.StatusCancelled, true
	}
	return "", false
}
