package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// LotteryOperations is the application surface the API exposes
type LotteryOperations interface {
	InitializeConfig(ctx context.Context, namespace string, authority common.Address, startSlot, endSlot, ticketPrice int64) (*entities.Lottery, error)
	InitializeLottery(ctx context.Context, namespace string, caller common.Address) (*entities.TicketCollection, error)
	BuyTicket(ctx context.Context, namespace string, payer common.Address) (*interfaces.TicketPurchaseResult, error)
	CommitRandomness(ctx context.Context, namespace string, caller, record common.Address) (*entities.Lottery, error)
	ChooseWinner(ctx context.Context, namespace string, caller, record common.Address) (*interfaces.WinnerResult, error)
	ClaimPrize(ctx context.Context, namespace string, claimant, credentialID common.Address) (*interfaces.ClaimResult, error)
	TransferTicket(ctx context.Context, namespace string, from, credentialID, to common.Address) (*entities.TicketCredential, error)
	GetLottery(ctx context.Context, namespace string) (*interfaces.LotteryView, error)
	ListTickets(ctx context.Context, namespace string, owner common.Address) ([]*entities.TicketCredential, error)
	Deposit(ctx context.Context, address common.Address, amount int64) (*entities.Account, error)
	GetAccount(ctx context.Context, address common.Address) (*entities.Account, error)
	PublishRecord(ctx context.Context, record *entities.RandomnessRecord) error
	RevealRecord(ctx context.Context, address common.Address, signature []byte) (*entities.RandomnessRecord, error)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the lottery HTTP API
type Server struct {
	lottery LotteryOperations
	auth    *Authenticator
	store   Pinger
}

// NewServer creates a new API server
func NewServer(lottery LotteryOperations, auth *Authenticator, store Pinger) *Server {
	return &Server{
		lottery: lottery,
		auth:    auth,
		store:   store,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Get("/lotteries/{namespace}", s.handleGetLottery)
	r.Get("/accounts/{address}", s.handleGetAccount)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.RequireCaller)

		r.Post("/lotteries/{namespace}/config", s.handleInitializeConfig)
		r.Post("/lotteries/{namespace}/collection", s.handleInitializeLottery)
		r.Get("/lotteries/{namespace}/tickets", s.handleListTickets)
		r.Post("/lotteries/{namespace}/tickets", s.handleBuyTicket)
		r.Post("/lotteries/{namespace}/tickets/{credential}/transfer", s.handleTransferTicket)
		r.Post("/lotteries/{namespace}/randomness", s.handleCommitRandomness)
		r.Post("/lotteries/{namespace}/winner", s.handleChooseWinner)
		r.Post("/lotteries/{namespace}/claim", s.handleClaimPrize)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAdmin)
			r.Post("/accounts/{address}/deposit", s.handleDeposit)
			r.Post("/oracle/records", s.handlePublishRecord)
			r.Post("/oracle/records/{address}/reveal", s.handleRevealRecord)
		})
	})

	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"requestID": middleware.GetReqID(r.Context()),
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"duration":  time.Since(start),
		}).Debug("Handled request")
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	respondJSON(w, status, errorResponse{Code: code, Error: msg})
}
