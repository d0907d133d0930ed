package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/auth"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

type ReportInput struct {
	From     string // YYYY-MM-DD, defaults to today
	To       string // YYYY-MM-DD, defaults to From
	BarberID *uuid.UUID
}

type ListReport struct {
	repo   domain.Repository
	policy Policy
	now    func() time.Time
}

func NewListReport(repo domain.Repository, policy Policy) *ListReport {
	return &ListReport{repo: repo, policy: policy, now: time.Now}
}

func (uc *ListReport) Execute(
	ctx context.Context,
	session auth.Session,
	in ReportInput,
) (*dto.BookingReportDTO, error) {

	if err := session.RequireAdmin(); err != nil {
		return nil, err
	}

	zone := uc.policy.Zone

	from := zone.Today(uc.now())
	if in.From != "" {
		d, err := timezone.ParseDay(in.From)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
		from = d
	}

	to := from
	if in.To != "" {
		d, err := timezone.ParseDay(in.To)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
		to = d
	}
	if to.Before(from) {
		return nil, httperr.ErrBusiness("invalid_range")
	}

	start, _ := zone.DayBounds(from)
	_, end := zone.DayBounds(to)

	bookings, err := uc.repo.ListForPeriod(ctx, domain.ReportFilter{
		From:     start,
		To:       end,
		BarberID: in.BarberID,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	out := &dto.BookingReportDTO{
		From:     from.String(),
		To:       to.String(),
		Items:    make([]dto.BookingReportItemDTO, 0, len(bookings)),
		ByStatus: map[string]int{},
	}

	for _, b := range bookings {
		day, clock := zone.Local(b.StartAt)
		out.Items = append(out.Items, dto.BookingReportItemDTO{
			ID:          b.ID,
			StartAt:     b.StartAt,
			Date:        day.String(),
			Time:        clock.String(),
			BarberID:    b.BarberID,
			BarberName:  b.Barber.Name,
			ServiceName: b.Service.Name,
			Price:       b.Service.Price,
			ClientName:  b.ClientName,
			ClientPhone: b.ClientPhone,
			Status:      b.Status,
		})

		out.ByStatus[b.Status]++
		if domain.Status(b.Status) != domain.StatusCancelled {
			out.Revenue += b.Service.Price
		}
	}
	out.Total = len(out.Items)

	return out, nil
}
