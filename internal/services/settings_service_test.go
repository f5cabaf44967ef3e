package services

import (
	"errors"
	"path/filepath"
	"testing"

	"officehourlens/internal/database"
	"officehourlens/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "services_test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestSettingsService_DefaultThreshold(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	setting, err := service.Get(models.SettingKeyFAQThreshold)
	if err != nil {
		t.Fatalf("Failed to get default setting: %v", err)
	}
	if setting.Value != "0.75" {
		t.Errorf("Expected default threshold value 0.75, got %s", setting.Value)
	}

	if got := service.FAQThreshold(); got != models.DefaultFAQThreshold {
		t.Errorf("Expected FAQThreshold %f, got %f", models.DefaultFAQThreshold, got)
	}
}

func TestSettingsService_SetThreshold(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	setting, err := service.Set(models.SettingKeyFAQThreshold, "0.9")
	if err != nil {
		t.Fatalf("Failed to set threshold: %v", err)
	}
	if setting.Value != "0.9" {
		t.Errorf("Expected stored value 0.9, got %s", setting.Value)
	}

	if got := service.FAQThreshold(); got != 0.9 {
		t.Errorf("Expected FAQThreshold 0.9 after write, got %f", got)
	}
}

func TestSettingsService_SetOverwrites(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	if _, err := service.Set(models.SettingKeyFAQThreshold, "0.5"); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if _, err := service.Set(models.SettingKeyFAQThreshold, "0.6"); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	if got := service.FAQThreshold(); got != 0.6 {
		t.Errorf("Expected most recent value 0.6, got %f", got)
	}
}

func TestSettingsService_RejectOutOfRange(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	if _, err := service.Set(models.SettingKeyFAQThreshold, "0.6"); err != nil {
		t.Fatalf("Setup write failed: %v", err)
	}

	_, err := service.Set(models.SettingKeyFAQThreshold, "1.5")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError for out-of-range value, got %v", err)
	}

	// Prior value must survive the rejected write
	if got := service.FAQThreshold(); got != 0.6 {
		t.Errorf("Expected prior threshold 0.6 after rejected write, got %f", got)
	}
}

func TestSettingsService_RejectNonNumeric(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	_, err := service.Set(models.SettingKeyFAQThreshold, "very high")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError for non-numeric value, got %v", err)
	}

	if got := service.FAQThreshold(); got != models.DefaultFAQThreshold {
		t.Errorf("Expected default threshold after rejected write, got %f", got)
	}
}

func TestSettingsService_RejectEmptyKey(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	_, err := service.Set("", "anything")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError for empty key, got %v", err)
	}
}

func TestSettingsService_UnknownKeyRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	// Unknown keys are stored as-is, no interpretation
	if _, err := service.Set("banner_message", "Office hours moved to 3pm"); err != nil {
		t.Fatalf("Failed to set unknown key: %v", err)
	}

	setting, err := service.Get("banner_message")
	if err != nil {
		t.Fatalf("Failed to get unknown key: %v", err)
	}
	if setting.Value != "Office hours moved to 3pm" {
		t.Errorf("Unexpected value round-trip: %s", setting.Value)
	}
}
