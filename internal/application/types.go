package application

import (
	"time"

	"github.com/dexterhq/settlement/internal/ports"
)

// Config carries the settlement policy knobs. Fee truncation direction and
// the auto-release seam are contracts documented on the operations
// themselves; these are only the tunable numbers.
type Config struct {
	PlatformFeePercent      int
	AutoReleaseDays         int
	MinWithdrawalCents      int64
	DefaultRevisionsAllowed int
	Currency                string
	SweepBatchSize          int
}

type Service struct {
	cfg      Config
	store    ports.SettlementStore
	reader   ports.SettlementReader
	notifier ports.Notifier
	nowFn    func() time.Time
}

type Dependencies struct {
	Config   Config
	Store    ports.SettlementStore
	Reader   ports.SettlementReader
	Notifier ports.Notifier
	// NowFn overrides the clock; tests inject a fixed time here so every
	// deadline computation is deterministic.
	NowFn func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.PlatformFeePercent <= 0 {
		cfg.PlatformFeePercent = 10
	}
	if cfg.AutoReleaseDays <= 0 {
		cfg.AutoReleaseDays = 14
	}
	if cfg.MinWithdrawalCents <= 0 {
		cfg.MinWithdrawalCents = 10000
	}
	if cfg.DefaultRevisionsAllowed <= 0 {
		cfg.DefaultRevisionsAllowed = 2
	}
	if cfg.Currency == "" {
		cfg.Currency = "KES"
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 100
	}
	nowFn := deps.NowFn
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:      cfg,
		store:    deps.Store,
		reader:   deps.Reader,
		notifier: deps.Notifier,
		nowFn:    nowFn,
	}
}
