package api

import (
	"context"
	"net/http"
	"time"

	"tokenlottery/domain/entities"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC(),
	}
	if err := s.store.Ping(ctx); err != nil {
		status["ok"] = false
		status["db"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleGetLottery(w http.ResponseWriter, r *http.Request) {
	view, err := s.lottery.GetLottery(r.Context(), chi.URLParam(r, "namespace"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toLotteryViewResponse(view))
}

func (s *Server) handleInitializeConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	caller, _ := CallerFromContext(r.Context())
	lottery, err := s.lottery.InitializeConfig(r.Context(), chi.URLParam(r, "namespace"), caller, req.StartSlot, req.EndSlot, req.TicketPrice)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toLotteryResponse(lottery))
}

func (s *Server) handleInitializeLottery(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	collection, err := s.lottery.InitializeLottery(r.Context(), chi.URLParam(r, "namespace"), caller)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCollectionResponse(collection))
}

func (s *Server) handleBuyTicket(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	result, err := s.lottery.BuyTicket(r.Context(), chi.URLParam(r, "namespace"), caller)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, purchaseResponse{
		Ticket:    toTicketResponse(result.Credential),
		PotAmount: result.Lottery.PotAmount,
	})
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	credentials, err := s.lottery.ListTickets(r.Context(), chi.URLParam(r, "namespace"), caller)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	tickets := make([]ticketResponse, 0, len(credentials))
	for _, c := range credentials {
		tickets = append(tickets, toTicketResponse(c))
	}
	respondJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleTransferTicket(w http.ResponseWriter, r *http.Request) {
	credential, ok := parseAddress(w, chi.URLParam(r, "credential"), "credential")
	if !ok {
		return
	}

	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	to, ok := parseAddress(w, req.To, "to")
	if !ok {
		return
	}

	caller, _ := CallerFromContext(r.Context())
	ticket, err := s.lottery.TransferTicket(r.Context(), chi.URLParam(r, "namespace"), caller, credential, to)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTicketResponse(ticket))
}

func (s *Server) handleCommitRandomness(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	record, ok := parseAddress(w, req.Record, "record")
	if !ok {
		return
	}

	caller, _ := CallerFromContext(r.Context())
	lottery, err := s.lottery.CommitRandomness(r.Context(), chi.URLParam(r, "namespace"), caller, record)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toLotteryResponse(lottery))
}

func (s *Server) handleChooseWinner(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	record, ok := parseAddress(w, req.Record, "record")
	if !ok {
		return
	}

	caller, _ := CallerFromContext(r.Context())
	result, err := s.lottery.ChooseWinner(r.Context(), chi.URLParam(r, "namespace"), caller, record)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, winnerResponse{
		Winner:        result.Lottery.Winner,
		RevealedValue: result.RevealedValue,
		TotalTickets:  result.Lottery.TotalTickets,
	})
}

func (s *Server) handleClaimPrize(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	credential, ok := parseAddress(w, req.Credential, "credential")
	if !ok {
		return
	}

	caller, _ := CallerFromContext(r.Context())
	result, err := s.lottery.ClaimPrize(r.Context(), chi.URLParam(r, "namespace"), caller, credential)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, claimResponse{
		Amount:    result.Amount,
		PotAmount: result.Lottery.PotAmount,
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	address, ok := parseAddress(w, chi.URLParam(r, "address"), "address")
	if !ok {
		return
	}

	account, err := s.lottery.GetAccount(r.Context(), address)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	address, ok := parseAddress(w, chi.URLParam(r, "address"), "address")
	if !ok {
		return
	}

	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	account, err := s.lottery.Deposit(r.Context(), address, req.Amount)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handlePublishRecord(w http.ResponseWriter, r *http.Request) {
	var req publishRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	record := &entities.RandomnessRecord{
		Address:   entities.RandomnessRecordAddress(req.PublicKey, req.SeedSlot, req.Seed),
		SeedSlot:  req.SeedSlot,
		Seed:      req.Seed,
		PublicKey: req.PublicKey,
	}
	if err := s.lottery.PublishRecord(r.Context(), record); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRecordResponse(record))
}

func (s *Server) handleRevealRecord(w http.ResponseWriter, r *http.Request) {
	address, ok := parseAddress(w, chi.URLParam(r, "address"), "address")
	if !ok {
		return
	}

	var req revealRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	record, err := s.lottery.RevealRecord(r.Context(), address, req.Signature)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRecordResponse(record))
}

func parseAddress(w http.ResponseWriter, raw, field string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		respondError(w, http.StatusBadRequest, "InvalidRequest", field+" must be a hex address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
