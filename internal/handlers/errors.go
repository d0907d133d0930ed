package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
)

type businessError struct {
	status  int
	message string
}

var businessErrors = map[string]businessError{
	"invalid_name":       {http.StatusBadRequest, "Informe seu nome."},
	"invalid_phone":      {http.StatusBadRequest, "Telefone inválido."},
	"invalid_date":       {http.StatusBadRequest, "Data inválida."},
	"invalid_slot":       {http.StatusBadRequest, "Horário inválido."},
	"invalid_range":      {http.StatusBadRequest, "Período inválido."},
	"invalid_status":     {http.StatusBadRequest, "Status inválido."},
	"unrecognized_reply": {http.StatusBadRequest, "Resposta não reconhecida."},
	"venue_closed":       {http.StatusBadRequest, "A barbearia não abre neste dia."},
	"date_in_past":       {http.StatusBadRequest, "Não é possível agendar no passado."},
	"too_soon":           {http.StatusBadRequest, "Horário muito próximo. Escolha outro."},

	"forbidden": {http.StatusForbidden, "Acesso negado."},

	"barber_not_found":  {http.StatusNotFound, "Barbeiro não encontrado."},
	"service_not_found": {http.StatusNotFound, "Serviço não encontrado."},
	"booking_not_found": {http.StatusNotFound, "Agendamento não encontrado."},

	"time_conflict": {http.StatusConflict, "Horário indisponível."},
	"invalid_state": {http.StatusConflict, "Transição de status não permitida."},
}

// writeError renders a use case error. Unknown errors become 500s and are
// logged with the request id.
func writeError(c *gin.Context, err error) {
	if code, ok := httperr.BusinessCode(err); ok {
		if be, known := businessErrors[code]; known {
			httperr.Write(c, be.status, code, be.message)
			return
		}
		httperr.BadRequest(c, code, "Requisição inválida.")
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		"path", c.FullPath(),
		"request_id", c.GetString(middleware.ContextRequestID),
		"err", err,
	)
	httperr.Internal(c, "internal_error", "Erro interno. Tente novamente.")
}
