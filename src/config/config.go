package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/username/dealsync/src/models"
)

type AppConfig struct {
	// Store access
	StoreAPIURL string
	StoreAPIKey string
	BoardID     string

	DryRun   bool
	LogLevel string

	// Retry/backoff applied to every store call
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	// Outbound request pacing against the store API
	StoreRequestsPerSecond float64
	StoreRequestBurst      int
	HTTPTimeout            time.Duration

	// Serve mode: expose the sync over HTTP instead of running once
	ServeMode    bool
	Port         string
	SyncAPIToken string

	EmailServiceProvider string
	MailgunDomain        string
	MailgunPrivateAPIKey string
	SenderEmail          string
	SenderName           string
	NotifyEmail          string

	// Board-specific column IDs, keyed by logical field name
	FieldMap models.FieldMap
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	apiKey := getEnv("MONDAY_API_KEY", "")
	if apiKey == "" {
		log.Fatalf("FATAL: MONDAY_API_KEY is not set in environment or .env file.")
	}
	boardID := getEnv("MONDAY_BOARD_ID", "")
	if boardID == "" {
		log.Fatalf("FATAL: MONDAY_BOARD_ID is not set in environment or .env file.")
	}

	retryBaseDelay := getEnvAsDuration("RETRY_BASE_DELAY", 1*time.Second)
	httpTimeout := getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second)

	rpsStr := getEnv("STORE_REQUESTS_PER_SECOND", "5")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil || rps <= 0 {
		log.Printf("WARNING: Invalid STORE_REQUESTS_PER_SECOND '%s'. Using default 5.", rpsStr)
		rps = 5
	}

	Cfg = &AppConfig{
		StoreAPIURL: getEnv("MONDAY_API_URL", "https://api.monday.com/v2"),
		StoreAPIKey: apiKey,
		BoardID:     boardID,

		DryRun:   getEnvAsBool("DRY_RUN", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 5),
		RetryBaseDelay:   retryBaseDelay,

		StoreRequestsPerSecond: rps,
		StoreRequestBurst:      getEnvAsInt("STORE_REQUEST_BURST", 2),
		HTTPTimeout:            httpTimeout,

		ServeMode:    getEnvAsBool("SERVE_MODE", false),
		Port:         getEnv("PORT", "8080"),
		SyncAPIToken: getEnv("SYNC_API_TOKEN", ""),

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "none"),
		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),
		SenderEmail:          getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:           getEnv("SENDER_NAME", "DealSync"),
		NotifyEmail:          getEnv("NOTIFY_EMAIL", ""),

		FieldMap: loadFieldMap(),
	}

	if Cfg.RetryMaxAttempts < 1 {
		log.Printf("WARNING: RETRY_MAX_ATTEMPTS must be at least 1, got %d. Using 1.", Cfg.RetryMaxAttempts)
		Cfg.RetryMaxAttempts = 1
	}
	if Cfg.ServeMode && Cfg.SyncAPIToken == "" {
		log.Fatalf("FATAL: SYNC_API_TOKEN is required when SERVE_MODE is enabled.")
	}
	if err := Cfg.FieldMap.Validate(); err != nil {
		log.Fatalf("FATAL: invalid field map: %v", err)
	}

	log.Printf("Configuration loaded: BoardID=%s, DryRun=%t, LogLevel=%s, ServeMode=%t",
		Cfg.BoardID, Cfg.DryRun, Cfg.LogLevel, Cfg.ServeMode)
}

// loadFieldMap resolves the logical-field -> column-ID mapping. A JSON file
// referenced by FIELD_MAP_PATH wins; otherwise each field comes from its own
// FIELD_* environment variable. The defaults match the board this tool was
// first built for.
func loadFieldMap() models.FieldMap {
	if path := getEnv("FIELD_MAP_PATH", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("FATAL: could not read field map file %s: %v", path, err)
		}
		var fm models.FieldMap
		if err := json.Unmarshal(data, &fm); err != nil {
			log.Fatalf("FATAL: could not parse field map file %s: %v", path, err)
		}
		log.Printf("Field map loaded from %s", path)
		return fm
	}

	return models.FieldMap{
		EquityInvestment:   getEnv("FIELD_EQUITY_INVESTMENT", "text_mkx8fh02"),
		NetOperatingIncome: getEnv("FIELD_NET_OPERATING_INCOME", ""),
		TotalProjectCost:   getEnv("FIELD_TOTAL_PROJECT_COST", ""),
		LoanAmount:         getEnv("FIELD_LOAN_AMOUNT", ""),
		MarketCapRate:      getEnv("FIELD_MARKET_CAP_RATE", ""),
		ExitCapRate:        getEnv("FIELD_EXIT_CAP_RATE", ""),
		Year1CF:            getEnv("FIELD_YEAR_1_CF", "text_mkx8wy34"),
		Year2CF:            getEnv("FIELD_YEAR_2_CF", "text_mkx85r06"),
		Year3CF:            getEnv("FIELD_YEAR_3_CF", "text_mkx853zq"),
		Year4CF:            getEnv("FIELD_YEAR_4_CF", "text_mkx8cq2k"),
		Year5CF:            getEnv("FIELD_YEAR_5_CF", "text_mkx8p02k"),
		SaleProceeds:       getEnv("FIELD_SALE_PROCEEDS", "text_mkx846jm"),

		CapRate:        getEnv("FIELD_CAP_RATE", ""),
		LTV:            getEnv("FIELD_LTV", ""),
		YieldOnCost:    getEnv("FIELD_YIELD_ON_COST", ""),
		Spread:         getEnv("FIELD_SPREAD", ""),
		ReversionValue: getEnv("FIELD_REVERSION_VALUE", ""),
		CashOnCash:     getEnv("FIELD_CASH_ON_CASH", ""),
		IRR:            getEnv("FIELD_IRR", "text_mkx86wgr"),
		EquityMultiple: getEnv("FIELD_EQUITY_MULTIPLE", "text_mkx8xted"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	// The original deployment used DRY_RUN=1, which ParseBool already accepts;
	// anything else unrecognized falls back.
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
