package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Integration credentials are optional:
// when empty the corresponding adapter degrades to a no-op or an error
// response, never a crash.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing

    AMQPURL string // RabbitMQ URL for the notification queue (optional)

    StripeSecretKey     string // Stripe API secret key (optional)
    StripeWebhookSecret string // Stripe webhook signing secret (optional)
    SendGridKey         string // SendGrid API key (optional)
    SendGridFrom        string // sender address for transactional email
    TwilioAccountSID    string // Twilio account SID (optional)
    TwilioAuthToken     string // Twilio auth token (optional)
    TwilioFromNumber    string // Twilio sending number
    OpenAIKey           string // LLM API key for program generation and the assistant (optional)
    OpenAIModel         string // LLM model name
    ZoomAccountID       string // Zoom server-to-server OAuth account id (optional)
    ZoomClientID        string // Zoom OAuth client id (optional)
    ZoomClientSecret    string // Zoom OAuth client secret (optional)
}

// Load reads configuration values from environment variables and
// returns a Config.  A local .env file is loaded first when present.
// Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
    if err := godotenv.Load(".env"); err == nil {
        log.Println("loaded configuration from .env file")
    }
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"),
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),

        AMQPURL: os.Getenv("RABBITMQ_URL"),

        StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
        StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
        SendGridKey:         os.Getenv("SENDGRID_API_KEY"),
        SendGridFrom:        getenv("SENDGRID_FROM", "noreply@trainercrm.local"),
        TwilioAccountSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
        TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
        TwilioFromNumber:    os.Getenv("TWILIO_FROM_NUMBER"),
        OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
        OpenAIModel:         getenv("OPENAI_MODEL", "gpt-4o-mini"),
        ZoomAccountID:       os.Getenv("ZOOM_ACCOUNT_ID"),
        ZoomClientID:        os.Getenv("ZOOM_CLIENT_ID"),
        ZoomClientSecret:    os.Getenv("ZOOM_CLIENT_SECRET"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
