package messages

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// Details is what every booking message mentions. Start must already be in
// the venue's location.
type Details struct {
	ClientName  string
	ClientPhone string
	BarberName  string
	ServiceName string
	Price       float64
	Start       time.Time
}

// For builds Details from b with its Barber and Service loaded.
func For(b *models.Booking, loc *time.Location) Details {
	return Details{
		ClientName:  b.ClientName,
		ClientPhone: b.ClientPhone,
		BarberName:  b.Barber.Name,
		ServiceName: b.Service.Name,
		Price:       b.Service.Price,
		Start:       b.StartAt.In(loc),
	}
}

func date(t time.Time) string  { return t.Format("02/01/2006") }
func clock(t time.Time) string { return t.Format("15:04") }

// NewBookingForBarber is sent to the barber right after a client books.
func NewBookingForBarber(d Details) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s! Você tem um novo agendamento:\n\n", d.BarberName)
	fmt.Fprintf(&b, "📅 Data: %s\n", date(d.Start))
	fmt.Fprintf(&b, "⏰ Horário: %s\n", clock(d.Start))
	fmt.Fprintf(&b, "👤 Cliente: %s\n", d.ClientName)
	fmt.Fprintf(&b, "📱 Telefone: %s\n", d.ClientPhone)
	fmt.Fprintf(&b, "💇‍♂️ Serviço: %s\n", d.ServiceName)
	fmt.Fprintf(&b, "💰 Valor: R$ %.2f\n\n", d.Price)
	b.WriteString("Status: Aguardando confirmação")
	return b.String()
}

// ConfirmationRequest asks the client to reply SIM or NÃO.
func ConfirmationRequest(d Details) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s! Confirme seu agendamento:\n\n", d.ClientName)
	fmt.Fprintf(&b, "📅 Data: %s\n", date(d.Start))
	fmt.Fprintf(&b, "⏰ Hora: %s\n", clock(d.Start))
	fmt.Fprintf(&b, "💇‍♂️ Serviço: %s\n\n", d.ServiceName)
	b.WriteString("Responda com:\n")
	b.WriteString("✅ SIM - para confirmar\n")
	b.WriteString("❌ NÃO - para cancelar")
	return b.String()
}

// ConfirmationNotice tells the barber a confirmation request went out.
func ConfirmationNotice(d Details) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s! Cliente precisa confirmar agendamento:\n\n", d.BarberName)
	fmt.Fprintf(&b, "👤 Cliente: %s\n", d.ClientName)
	fmt.Fprintf(&b, "📱 Telefone: %s\n", d.ClientPhone)
	fmt.Fprintf(&b, "📅 Data: %s\n", date(d.Start))
	fmt.Fprintf(&b, "⏰ Hora: %s\n", clock(d.Start))
	fmt.Fprintf(&b, "💇‍♂️ Serviço: %s", d.ServiceName)
	return b.String()
}

func ReplyConfirmed(d Details) string {
	return fmt.Sprintf("Agendamento confirmado! Te esperamos em %s às %s. ✅", date(d.Start), clock(d.Start))
}

func ReplyCancelled(d Details) string {
	return fmt.Sprintf("Agendamento de %s às %s cancelado. ❌", date(d.Start), clock(d.Start))
}

const (
	ReplyUnrecognized = "Não entendi sua resposta. Responda SIM para confirmar ou NÃO para cancelar."
	ReplyNoBooking    = "Não encontramos nenhum agendamento pendente para este número."
)

// DeepLink opens a WhatsApp chat with phone, pre-filled with text. phone
// must contain digits only.
func DeepLink(phone, text string) string {
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(text)
}
