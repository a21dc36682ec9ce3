package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/services"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"not authorized", entities.ErrNotAuthorized, http.StatusForbidden, "NotAuthorized"},
		{"lottery not found", entities.ErrLotteryNotFound, http.StatusNotFound, "LotteryNotFound"},
		{"invalid window", entities.ErrInvalidSaleWindow, http.StatusBadRequest, "InvalidSaleWindow"},
		{"not open", entities.ErrLotteryNotOpen, http.StatusConflict, "LotteryNotOpen"},
		{"incorrect ticket", entities.ErrIncorrectTicket, http.StatusConflict, "IncorrectTicket"},
		{"wrapped", fmt.Errorf("failed to parse randomness record: %w", entities.ErrRandomnessRecordNotFound), http.StatusNotFound, "RandomnessRecordNotFound"},
		{"namespaced", services.ErrWithNamespace(entities.ErrLotteryExists, "token_lottery"), http.StatusConflict, "LotteryExists"},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError, "Internal"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, code := StatusForError(tt.err)
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedCode, code)
		})
	}
}
