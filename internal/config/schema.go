package config

// configSchema is the JSON Schema the raw configuration file must satisfy
// before it is decoded. additionalProperties is off so a mistyped key fails
// loudly instead of silently falling back to a default. Credentials are not
// required here because they may arrive through the environment; Validate
// enforces their presence after the merge.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "url",
    "reservations.max_concurrent",
    "loans.duration_in_days",
    "loans.max_monthly"
  ],
  "properties": {
    "url": {
      "type": "string",
      "minLength": 1,
      "description": "Base URL of the library site"
    },
    "user.name": {
      "type": "string",
      "description": "Account username"
    },
    "user.password": {
      "type": "string",
      "description": "Account password"
    },
    "reservations.max_concurrent": {
      "type": "integer",
      "minimum": 0,
      "description": "Maximum outstanding reservations"
    },
    "loans.duration_in_days": {
      "type": "integer",
      "minimum": 1,
      "description": "Loan duration imposed by the library"
    },
    "loans.max_monthly": {
      "type": "integer",
      "minimum": 0,
      "description": "Maximum loans per calendar month"
    },
    "books.wishlist": {
      "type": "array",
      "items": {
        "type": "integer",
        "minimum": 1
      },
      "description": "Catalogue IDs to borrow or reserve"
    },
    "browser": {
      "type": "object",
      "properties": {
        "headless": { "type": "boolean" },
        "no_sandbox": { "type": "boolean" },
        "chrome_path": { "type": "string" },
        "user_data_dir": { "type": "string" },
        "timeout_seconds": { "type": "integer", "minimum": 1 }
      },
      "additionalProperties": false
    },
    "logging": {
      "type": "object",
      "properties": {
        "level": { "type": "string", "enum": ["debug", "info", "warn", "error"] },
        "file": { "type": "string" },
        "pretty": { "type": "boolean" },
        "redaction": { "type": "boolean" }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`
