package config

import (
	"os"
	"path/filepath"
)

// Starter is the configuration a new user starts from. It passes the schema
// as-is; only the credentials need filling in.
const Starter = `{
  "url": "https://yourlibrary.medialibrary.it",
  "user.name": "",
  "user.password": "",
  "reservations.max_concurrent": 2,
  "loans.duration_in_days": 14,
  "loans.max_monthly": 4,
  "books.wishlist": [],
  "browser": {
    "headless": true
  },
  "logging": {
    "level": "info",
    "pretty": true,
    "redaction": true
  }
}
`

// WriteStarter writes the starter configuration to path. It refuses to
// overwrite an existing file. The file is created user-only readable since
// it will hold a password.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return configErr(path, "file already exists, refusing to overwrite")
	} else if !os.IsNotExist(err) {
		return configErr(path, "cannot stat file: %v", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return configErr(path, "cannot create directory: %v", err)
		}
	}

	if err := os.WriteFile(path, []byte(Starter), 0600); err != nil {
		return configErr(path, "cannot write file: %v", err)
	}

	return nil
}
