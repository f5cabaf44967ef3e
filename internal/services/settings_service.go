package services

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"officehourlens/internal/database"
	"officehourlens/internal/models"
)

// SettingsService is a narrow key-value store for process-wide configuration.
// Values are strings interpreted per key; unknown keys are stored as-is.
type SettingsService struct {
	db *database.DB
}

// NewSettingsService creates a new settings service
func NewSettingsService(db *database.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the stored value for key, or the hard-coded default if the key
// has never been written.
func (s *SettingsService) Get(key string) (models.Setting, error) {
	var setting models.Setting
	// Backticks keep `key` valid on MySQL, where it is a reserved word;
	// SQLite accepts them too.
	err := s.db.QueryRow(
		"SELECT `key`, value, updated_at FROM settings WHERE `key` = ?", key,
	).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)

	if err == sql.ErrNoRows {
		return models.Setting{
			Key:       key,
			Value:     defaultValue(key),
			UpdatedAt: time.Time{},
		}, nil
	}
	if err != nil {
		return models.Setting{}, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting, nil
}

// Set validates and overwrites-or-inserts a setting. A rejected write leaves
// the prior value intact.
func (s *SettingsService) Set(key, value string) (models.Setting, error) {
	if err := validateSetting(key, value); err != nil {
		return models.Setting{}, err
	}

	now := time.Now().UTC()
	var err error
	if s.db.Driver() == "mysql" {
		_, err = s.db.Exec(
			"INSERT INTO settings (`key`, value, updated_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)",
			key, value, now,
		)
	} else {
		_, err = s.db.Exec(
			"INSERT INTO settings (`key`, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(`key`) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
			key, value, now,
		)
	}
	if err != nil {
		return models.Setting{}, fmt.Errorf("failed to write setting %s: %w", key, err)
	}

	return models.Setting{Key: key, Value: value, UpdatedAt: now}, nil
}

// FAQThreshold returns the clustering similarity cutoff as a float.
// A value that no longer parses (hand-edited database) falls back to the
// default rather than poisoning every resolution.
func (s *SettingsService) FAQThreshold() float64 {
	setting, err := s.Get(models.SettingKeyFAQThreshold)
	if err != nil {
		return models.DefaultFAQThreshold
	}
	threshold, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil || threshold < 0 || threshold > 1 {
		return models.DefaultFAQThreshold
	}
	return threshold
}

func validateSetting(key, value string) error {
	if key == "" {
		return &ValidationError{Field: "key", Message: "must not be empty"}
	}

	if key == models.SettingKeyFAQThreshold {
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &ConfigurationError{Key: key, Value: value, Reason: "must be a number"}
		}
		if threshold < 0 || threshold > 1 {
			return &ConfigurationError{Key: key, Value: value, Reason: "must be between 0 and 1"}
		}
	}
	return nil
}

func defaultValue(key string) string {
	switch key {
	case models.SettingKeyFAQThreshold:
		return strconv.FormatFloat(models.DefaultFAQThreshold, 'f', 2, 64)
	default:
		return ""
	}
}
