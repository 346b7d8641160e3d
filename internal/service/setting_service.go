package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/cache"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/repository"
	"github.com/voxo-cms/internal/validation"
)

// settingService is the concrete implementation of SettingService.
// Reads go through the cache; every write invalidates it.
type settingService struct {
	settings  repository.SettingRepository
	cache     cache.SettingsCache
	validator *validation.Validator
	log       zerolog.Logger
}

func newSettingService(settings repository.SettingRepository, c cache.SettingsCache, log zerolog.Logger) *settingService {
	return &settingService{
		settings:  settings,
		cache:     c,
		validator: validation.NewValidator(),
		log:       log.With().Str("service", "setting").Logger(),
	}
}

// isSecret reports whether a setting value must not be listed in clear
func isSecret(key string) bool {
	return strings.HasSuffix(key, "_api_key") || strings.HasSuffix(key, "_secret")
}

// mask keeps the last four characters of a secret
func mask(value string) string {
	if value == "" {
		return ""
	}
	r := []rune(value)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}

// All lists every setting with secret values masked
func (s *settingService) All(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = []models.Setting{}
	}
	for i := range settings {
		if isSecret(settings[i].Key) {
			settings[i].Value = mask(settings[i].Value)
		}
	}
	return settings, nil
}

// Get returns one setting with a secret value masked
func (s *settingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, ErrNotFound
	}
	if isSecret(setting.Key) {
		setting.Value = mask(setting.Value)
	}
	return setting, nil
}

func (s *settingService) Upsert(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if errs := s.validator.ValidateSettingKey(key); len(errs) > 0 {
		return invalid(errs)
	}

	if err := s.settings.Upsert(ctx, key, value); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to invalidate settings cache")
	}

	s.log.Info().Str("key", key).Msg("Setting updated")
	return nil
}

// Resolve returns the trimmed value of key, or fallback when it is unset or blank
func (s *settingService) Resolve(ctx context.Context, key, fallback string) string {
	values, err := s.snapshot(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read settings, using fallback")
		return fallback
	}
	if v := strings.TrimSpace(values[key]); v != "" {
		return v
	}
	return fallback
}

// snapshot reads through the cache. The fill carries the version seen at
// Load so it is dropped if a write invalidated the cache in between.
func (s *settingService) snapshot(ctx context.Context) (map[string]string, error) {
	snap, ok, loadErr := s.cache.Load(ctx)
	if loadErr != nil {
		s.log.Warn().Err(loadErr).Msg("Settings cache unavailable")
	}
	if ok {
		return snap.Values, nil
	}

	settings, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(settings))
	for _, st := range settings {
		values[st.Key] = st.Value
	}

	// without a trusted version the fill could be stale
	if loadErr != nil {
		return values, nil
	}
	if err := s.cache.Store(ctx, cache.Snapshot{Values: values, Version: snap.Version}); err != nil {
		s.log.Warn().Err(err).Msg("Failed to fill settings cache")
	}
	return values, nil
}
