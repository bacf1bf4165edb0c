package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
)

// SettingsStore is satisfied by *store.JSONStore[models.Settings].
type SettingsStore interface {
	Load(ctx context.Context) models.Settings
	SaveErr(ctx context.Context, v models.Settings) error
}

type SettingsService interface {
	Get(ctx context.Context) models.Settings
	Save(ctx context.Context, s models.Settings) (models.Settings, error)
	// Subscribe registers fn to be called with every successfully saved
	// settings value.
	Subscribe(fn func(models.Settings))
}

type settingsService struct {
	store     SettingsStore
	log       logging.Logger
	mu        sync.Mutex
	listeners []func(models.Settings)
}

func NewSettingsService(st SettingsStore, log logging.Logger) SettingsService {
	return &settingsService{store: st, log: log.With("module", "settings")}
}

func (s *settingsService) Get(ctx context.Context) models.Settings {
	return s.store.Load(ctx)
}

// Save overwrites the stored settings. The theme is lower-cased before
// validation.
func (s *settingsService) Save(ctx context.Context, in models.Settings) (models.Settings, error) {
	in.Theme = strings.ToLower(strings.TrimSpace(in.Theme))
	if in.Theme == "" {
		in.Theme = models.DefaultSettings().Theme
	}
	if err := in.Validate(); err != nil {
		return models.Settings{}, err
	}

	if err := s.store.SaveErr(ctx, in); err != nil {
		return models.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	s.log.Info(ctx, "settings saved", "autoSync", in.AutoSync, "syncInterval", in.SyncInterval)
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(in)
	}
	return in, nil
}

func (s *settingsService) Subscribe(fn func(models.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
