package api

import (
	"errors"
	"net/http"

	"tokenlottery/domain/entities"

	log "github.com/sirupsen/logrus"
)

var statusByCode = map[string]int{
	entities.ErrNotAuthorized.Code:              http.StatusForbidden,
	entities.ErrLotteryNotFound.Code:            http.StatusNotFound,
	entities.ErrRandomnessRecordNotFound.Code:   http.StatusNotFound,
	entities.ErrInvalidSaleWindow.Code:          http.StatusBadRequest,
	entities.ErrInvalidTicketPrice.Code:         http.StatusBadRequest,
	entities.ErrInvalidAmount.Code:              http.StatusBadRequest,
	entities.ErrInvalidRandomnessRecord.Code:    http.StatusBadRequest,
	entities.ErrInvalidRandomnessSignature.Code: http.StatusBadRequest,
}

// StatusForError maps a domain error to its HTTP status and stable code.
// Errors that are not lottery errors are internal.
func StatusForError(err error) (int, string) {
	var lotteryErr *entities.LotteryError
	if !errors.As(err, &lotteryErr) {
		return http.StatusInternalServerError, "Internal"
	}

	if status, ok := statusByCode[lotteryErr.Code]; ok {
		return status, lotteryErr.Code
	}
	return http.StatusConflict, lotteryErr.Code
}

func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusForError(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		respondError(w, status, code, "internal error")
		return
	}

	respondError(w, status, code, err.Error())
}
