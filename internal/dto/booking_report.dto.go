package dto

import (
	"time"

	"github.com/google/uuid"
)

type BookingReportItemDTO struct {
	ID          uuid.UUID `json:"id"`
	StartAt     time.Time `json:"start_at"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	BarberID    uuid.UUID `json:"barber_id"`
	BarberName  string    `json:"barber_name"`
	ServiceName string    `json:"service_name"`
	Price       float64   `json:"price"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	Status      string    `json:"status"`
}

type BookingReportDTO struct {
	From     string                 `json:"from"`
	To       string                 `json:"to"`
	Items    []BookingReportItemDTO `json:"items"`
	Total    int                    `json:"total"`
	Revenue  float64                `json:"revenue"`
	ByStatus map[string]int         `json:"by_status"`
}
