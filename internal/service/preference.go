package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/internal/repository"
	apperrors "github.com/utafrali/litreads/pkg/errors"
)

// PreferenceService persists per-visitor display settings.
type PreferenceService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewPreferenceService creates a preference service.
func NewPreferenceService(store repository.Store, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{store: store, logger: logger}
}

// Get returns the visitor's preferences, defaulting to light mode when
// nothing is stored or storage is unreachable.
func (s *PreferenceService) Get(ctx context.Context, visitorID string) domain.Preferences {
	if visitorID == "" {
		return domain.Preferences{}
	}
	data, err := s.store.Get(ctx, visitorID, domain.DarkModeKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "preference storage unreadable, using defaults",
				slog.String("visitor_id", visitorID),
				slog.String("error", err.Error()),
			)
		}
		return domain.Preferences{}
	}
	return domain.Preferences{DarkMode: domain.ParseDarkMode(string(data))}
}

// SetDarkMode persists the dark-mode flag as "on" or "off".
func (s *PreferenceService) SetDarkMode(ctx context.Context, visitorID string, on bool) (domain.Preferences, error) {
	if visitorID == "" {
		return domain.Preferences{}, apperrors.InvalidInput("visitor id is required")
	}
	prefs := domain.Preferences{DarkMode: on}
	if err := s.store.Set(ctx, visitorID, domain.DarkModeKey, []byte(prefs.DarkModeValue())); err != nil {
		return domain.Preferences{}, fmt.Errorf("save dark mode: %w", err)
	}
	return prefs, nil
}

// ToggleDarkMode flips and persists the dark-mode flag.
func (s *PreferenceService) ToggleDarkMode(ctx context.Context, visitorID string) (domain.Preferences, error) {
	current := s.Get(ctx, visitorID)
	return s.SetDarkMode(ctx, visitorID, !current.DarkMode)
}
