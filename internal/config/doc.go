// Package config manages application configuration for the GameKeeper API.
//
// The config package loads and validates configuration from environment variables.
// All configuration is centralized here to provide a single source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables, with an optional .env
// file picked up in development via godotenv:
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: PostgreSQL connection settings
//   - JWTConfig: JWT signing and validation settings
//   - DiscordConfig: Transition announcement webhook
//   - TelemetryConfig: OTLP trace export
//   - JobsConfig: Background processor intervals
//   - RateLimitConfig: Request throttling
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT                 - HTTP server port (default: 8080)
//	DB_HOST, DB_PORT, DB_NAME   - PostgreSQL connection
//	DB_USER, DB_PASSWORD        - Database credentials
//	JWT_PRIVATE_KEY_PATH        - RSA private key for token signing
//	DISCORD_WEBHOOK_URL         - Webhook for open/close announcements
//	OTEL_EXPORTER_OTLP_ENDPOINT - Trace collector endpoint
//
// # Default Values
//
// Sensible defaults are provided for development:
//
//	func getEnv(key, defaultValue string) string {
//	    if value := os.Getenv(key); value != "" {
//	        return value
//	    }
//	    return defaultValue
//	}
package config
