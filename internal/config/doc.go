// Package config provides configuration management for WARDA.
//
// # Overview
//
// The config package uses Viper to load configuration from YAML files and
// environment variables. It provides a type-safe configuration structure with
// validation, default values, and automatic file creation.
//
// # Environment Variables
//
// All configuration values can be overridden using environment variables
// with the WARDA_ prefix. Nested fields are separated by underscores.
//
// Examples:
//   - WARDA_SERVER_ADDR=:8080
//   - WARDA_EMBEDDING_PROVIDER=openai
//   - WARDA_ENGINE_MIN_SIMILARITY=0.35
//   - WARDA_LOGGING_LEVEL=debug
//
// API keys are never read from the file. llm.api_key_env and
// embedding.api_key_env name the variables that hold them (GROQ_API_KEY and
// OPENAI_API_KEY by default).
//
// # Engine Thresholds
//
// The engine section carries every similarity and confidence threshold used
// by the response pipeline, so they can be tuned without a rebuild.
package config
