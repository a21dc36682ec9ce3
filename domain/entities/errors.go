package entities

// LotteryError is a terminal validation failure of a lottery transition.
// Code is stable and safe to expose to callers.
type LotteryError struct {
	Code    string
	Message string
}

func (e *LotteryError) Error() string {
	return e.Message
}

func newLotteryError(code, message string) *LotteryError {
	return &LotteryError{Code: code, Message: message}
}

// Timing violations
var (
	ErrLotteryNotOpen      = newLotteryError("LotteryNotOpen", "lottery is not open")
	ErrLotteryNotCompleted = newLotteryError("LotteryNotCompleted", "lottery is not completed")
)

// Authorization violations
var (
	ErrNotAuthorized = newLotteryError("NotAuthorized", "account not authorized")
)

// Randomness protocol violations
var (
	ErrRandomnessAlreadyRevealed  = newLotteryError("RandomnessAlreadyRevealed", "randomness already revealed")
	ErrIncorrectRandomnessAccount = newLotteryError("IncorrectRandomnessAccount", "incorrect randomness account")
	ErrRandomnessNotResolved      = newLotteryError("RandomnessNotResolved", "randomness not resolved")
	ErrRandomnessAlreadyCommitted = newLotteryError("RandomnessAlreadyCommitted", "randomness already committed")
	ErrRandomnessRecordNotFound   = newLotteryError("RandomnessRecordNotFound", "randomness record not found")
	ErrInvalidRandomnessSignature = newLotteryError("InvalidRandomnessSignature", "randomness signature does not verify")
	ErrInvalidRandomnessRecord    = newLotteryError("InvalidRandomnessRecord", "randomness record is malformed")
	ErrRevealTooEarly             = newLotteryError("RevealTooEarly", "randomness cannot be revealed before its commit window closes")
)

// State latch violations
var (
	ErrWinnerChosen    = newLotteryError("WinnerChosen", "winner is already chosen")
	ErrWinnerNotChosen = newLotteryError("WinnerNotChosen", "winner not chosen")
)

// Ticket identity violations
var (
	ErrNotVerified     = newLotteryError("NotVerified", "ticket not verified")
	ErrIncorrectTicket = newLotteryError("IncorrectTicket", "incorrect ticket")
	ErrNoTicket        = newLotteryError("NoTicket", "no ticket")
)

// Configuration and lifecycle violations
var (
	ErrInvalidSaleWindow        = newLotteryError("InvalidSaleWindow", "start slot must be before end slot")
	ErrInvalidTicketPrice       = newLotteryError("InvalidTicketPrice", "ticket price must be positive")
	ErrLotteryExists            = newLotteryError("LotteryExists", "lottery already configured")
	ErrLotteryNotFound          = newLotteryError("LotteryNotFound", "lottery not found")
	ErrCollectionExists         = newLotteryError("CollectionExists", "ticket collection already initialized")
	ErrCollectionNotInitialized = newLotteryError("CollectionNotInitialized", "ticket collection not initialized")
	ErrNoTickets                = newLotteryError("NoTickets", "no tickets were sold")
)

// Ledger violations
var (
	ErrInsufficientFunds = newLotteryError("InsufficientFunds", "insufficient funds")
	ErrInvalidAmount     = newLotteryError("InvalidAmount", "amount must be positive")
)
