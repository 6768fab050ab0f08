package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kpozdnikin/nft-history/internal/domain"
)

//go:generate mockgen -source=lookup.go -destination=mocks/lookup_mock.go -package=mocks

const (
	MessageInvalidAPIKey = "Invalid blockspan API key!"
	MessageVerifyInputs  = "Error: Verify that chain, contract address, and token ID are all valid!"
)

// Lookup outcomes reported to the Observer.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidAPIKey = "invalid_api_key"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeStale         = "stale"
)

// API is the NFT data provider.
type API interface {
	FetchNFT(ctx context.Context, contract, tokenID string, chain domain.Chain) (*domain.NFT, error)
	FetchTransfers(ctx context.Context, contract, tokenID string, chain domain.Chain) ([]domain.Transfer, error)
}

// Observer is notified once per finished lookup.
type Observer interface {
	ObserveLookup(outcome string)
}

// FormState holds the user input of the lookup form.
type FormState struct {
	Chain    domain.Chain
	Contract string
	TokenID  string
	Loading  bool
}

// ResultState holds what the last lookup produced. NFTFetched separates the
// initial state or an empty provider answer (nothing to show) from a failed
// NFT lookup (show Error).
type ResultState struct {
	NFT        *domain.NFT
	NFTFetched bool
	Transfers  []domain.Transfer
	Error      string
}

type State struct {
	Form   FormState
	Result ResultState
}

// Lookup is one lookup session: the form, the last result and the
// controller that fills the result from the API.
type Lookup struct {
	api      API
	observer Observer
	log      zerolog.Logger

	mu         sync.Mutex
	generation uint64
	state      State
}

func NewLookup(api API, observer Observer, log zerolog.Logger) *Lookup {
	return &Lookup{
		api:      api,
		observer: observer,
		log:      log,
		state: State{
			Form: FormState{Chain: domain.DefaultChain},
		},
	}
}

func (l *Lookup) SetChain(chain domain.Chain) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Form.Chain = chain
}

func (l *Lookup) SetContract(contract string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Form.Contract = contract
}

func (l *Lookup) SetTokenID(tokenID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Form.TokenID = tokenID
}

// Fetch runs the NFT lookup and then the transfer lookup for the current form
// values and returns the resulting state. Provider errors do not stop the
// flow; they only set the error message, the last one winning. When Fetch is
// called again before an earlier call finished, the earlier call's results
// are dropped.
func (l *Lookup) Fetch(ctx context.Context) State {
	l.mu.Lock()
	l.generation++
	generation := l.generation
	query := domain.Query{
		Chain:    l.state.Form.Chain,
		Contract: l.state.Form.Contract,
		TokenID:  l.state.Form.TokenID,
	}
	l.state.Form.Loading = true
	l.state.Result = ResultState{}
	l.mu.Unlock()

	log := l.log.With().
		Str("lookup_id", uuid.NewString()).
		Str("chain", query.Chain.String()).
		Str("contract", query.Contract).
		Str("token_id", query.TokenID).
		Logger()

	outcome := l.run(ctx, generation, query, log)
	l.finish(generation)

	log.Info().Str("outcome", outcome).Msg("lookup finished")
	if l.observer != nil {
		l.observer.ObserveLookup(outcome)
	}
	return l.Snapshot()
}

func (l *Lookup) run(ctx context.Context, generation uint64, query domain.Query, log zerolog.Logger) string {
	var lastErr error

	if !query.Chain.Valid() {
		log.Warn().Msg("unsupported chain")
		lastErr = domain.ErrInvalidInput
		l.apply(generation, func(r *ResultState) {
			r.NFTFetched = true
			r.Error = messageFor(lastErr)
		})
		return outcomeFor(lastErr)
	}

	nft, err := l.api.FetchNFT(ctx, query.Contract, query.TokenID, query.Chain)
	if err != nil {
		log.Warn().Err(err).Msg("fetching nft")
		lastErr = err
	}
	if !l.apply(generation, func(r *ResultState) {
		r.NFT = nft
		r.NFTFetched = nft != nil || err != nil
		if err != nil {
			r.Error = messageFor(err)
		}
	}) {
		return OutcomeStale
	}

	transfers, err := l.api.FetchTransfers(ctx, query.Contract, query.TokenID, query.Chain)
	if err != nil {
		log.Warn().Err(err).Msg("fetching transfers")
		lastErr = err
	}
	if !l.apply(generation, func(r *ResultState) {
		r.Transfers = transfers
		if err != nil {
			r.Error = messageFor(err)
		}
	}) {
		return OutcomeStale
	}

	return outcomeFor(lastErr)
}

// apply mutates the result if generation is still the latest Fetch.
func (l *Lookup) apply(generation uint64, update func(r *ResultState)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if generation != l.generation {
		return false
	}
	update(&l.state.Result)
	return true
}

func (l *Lookup) finish(generation uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if generation == l.generation {
		l.state.Form.Loading = false
	}
}

// Snapshot returns a copy of the current state.
func (l *Lookup) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.state
	if l.state.Result.Transfers != nil {
		state.Result.Transfers = make([]domain.Transfer, len(l.state.Result.Transfers))
		copy(state.Result.Transfers, l.state.Result.Transfers)
	}
	return state
}

func messageFor(err error) string {
	if errors.Is(err, domain.ErrInvalidAPIKey) {
		return MessageInvalidAPIKey
	}
	return MessageVerifyInputs
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidAPIKey):
		return OutcomeInvalidAPIKey
	default:
		return OutcomeInvalidInput
	}
}
