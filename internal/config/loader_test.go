package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validConfig = `{
  "url": "https://brianza.medialibrary.it/",
  "user.name": "ann",
  "user.password": "hunter22",
  "reservations.max_concurrent": 2,
  "loans.duration_in_days": 14,
  "loans.max_monthly": 4,
  "books.wishlist": [150243379, 150243380],
  "browser": {
    "headless": false,
    "timeout_seconds": 10
  },
  "logging": {
    "level": "debug",
    "pretty": false
  }
}`

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, validConfig))
		require.NoError(t, err)

		assert.Equal(t, "https://brianza.medialibrary.it", cfg.URL, "trailing slash stripped")
		assert.Equal(t, "ann", cfg.Username)
		assert.Equal(t, "hunter22", cfg.Password)
		assert.Equal(t, 2, cfg.MaxConcurrentReservations)
		assert.Equal(t, 14, cfg.LoanDurationDays)
		assert.Equal(t, 4, cfg.MaxMonthlyLoans)
		assert.Equal(t, []int{150243379, 150243380}, cfg.Wishlist)
		assert.False(t, cfg.Browser.Headless)
		assert.Equal(t, 10*time.Second, cfg.Browser.Timeout())
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.False(t, cfg.Logging.Pretty)
		assert.True(t, cfg.Logging.Redaction, "untouched default survives partial section")
	})

	t.Run("defaults fill optional sections", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `{
  "url": "https://lib.example",
  "user.name": "ann",
  "user.password": "hunter22",
  "reservations.max_concurrent": 1,
  "loans.duration_in_days": 14,
  "loans.max_monthly": 2
}`))
		require.NoError(t, err)

		assert.True(t, cfg.Browser.Headless)
		assert.Equal(t, 30*time.Second, cfg.Browser.Timeout())
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.True(t, cfg.Logging.Pretty)
		assert.True(t, cfg.Logging.Redaction)
		assert.Empty(t, cfg.Wishlist)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Reason, "cannot read")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"url": `))

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Reason, "malformed JSON")
	})
}

func baseDocument() map[string]interface{} {
	return map[string]interface{}{
		"url":                         "https://lib.example",
		"user.name":                   "ann",
		"user.password":               "hunter22",
		"reservations.max_concurrent": 2,
		"loans.duration_in_days":      14,
		"loans.max_monthly":           4,
	}
}

func writeDocument(t *testing.T, doc map[string]interface{}) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return writeConfig(t, string(raw))
}

func TestLoadSchemaViolations(t *testing.T) {
	t.Run("missing required keys", func(t *testing.T) {
		required := []string{
			"url",
			"reservations.max_concurrent",
			"loans.duration_in_days",
			"loans.max_monthly",
		}
		for _, key := range required {
			t.Run(key, func(t *testing.T) {
				doc := baseDocument()
				delete(doc, key)

				_, err := Load(writeDocument(t, doc))

				var cerr *ConfigError
				require.ErrorAs(t, err, &cerr)
				assert.Contains(t, cerr.Reason, key)
			})
		}
	})

	t.Run("mistyped key", func(t *testing.T) {
		doc := baseDocument()
		doc["loans.max_montly"] = 4

		_, err := Load(writeDocument(t, doc))

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Reason, "loans.max_montly")
	})

	t.Run("wrong type", func(t *testing.T) {
		doc := baseDocument()
		doc["loans.max_monthly"] = "four"

		_, err := Load(writeDocument(t, doc))

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("negative reservation cap", func(t *testing.T) {
		doc := baseDocument()
		doc["reservations.max_concurrent"] = -1

		_, err := Load(writeDocument(t, doc))

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("zero loan duration", func(t *testing.T) {
		doc := baseDocument()
		doc["loans.duration_in_days"] = 0

		_, err := Load(writeDocument(t, doc))

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("non-positive wishlist id", func(t *testing.T) {
		doc := baseDocument()
		doc["books.wishlist"] = []int{150243379, 0}

		_, err := Load(writeDocument(t, doc))

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Run("environment supplies missing credentials", func(t *testing.T) {
		t.Setenv(EnvUsername, "enviro")
		t.Setenv(EnvPassword, "s3same-pass")

		doc := baseDocument()
		delete(doc, "user.name")
		delete(doc, "user.password")

		cfg, err := Load(writeDocument(t, doc))
		require.NoError(t, err)
		assert.Equal(t, "enviro", cfg.Username)
		assert.Equal(t, "s3same-pass", cfg.Password)
	})

	t.Run("environment beats the file", func(t *testing.T) {
		t.Setenv(EnvUsername, "")
		t.Setenv(EnvPassword, "from-env")

		cfg, err := Load(writeConfig(t, validConfig))
		require.NoError(t, err)
		assert.Equal(t, "ann", cfg.Username)
		assert.Equal(t, "from-env", cfg.Password)
	})

	t.Run("missing credentials fail before any browser work", func(t *testing.T) {
		t.Setenv(EnvUsername, "")
		t.Setenv(EnvPassword, "")

		doc := baseDocument()
		delete(doc, "user.name")
		path := writeDocument(t, doc)

		_, err := Load(path)

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Reason, "user.name")
		assert.Equal(t, path, cerr.Path)
	})
}
