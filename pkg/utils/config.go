package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("LEAFNOTE_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("LEAFNOTE_JWT_ISSUER")
	if issuer == "" {
		issuer = "leafnote"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("LEAFNOTE_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			duration = time.Duration(h) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

type MetadataConfig struct {
	BaseURL string
	APIKey  string
}

func LoadMetadataConfig() MetadataConfig {
	base := os.Getenv("LEAFNOTE_BOOKS_API_URL")
	if base == "" {
		base = "https://www.googleapis.com/books/v1"
	}
	return MetadataConfig{
		BaseURL: base,
		APIKey:  os.Getenv("LEAFNOTE_BOOKS_API_KEY"),
	}
}

type ReportConfig struct {
	MailAPIURL string
	MailAPIKey string
	From       string
	To         string
}

func LoadReportConfig() ReportConfig {
	apiURL := os.Getenv("LEAFNOTE_MAIL_API_URL")
	if apiURL == "" {
		apiURL = "https://api.resend.com/emails"
	}
	from := os.Getenv("LEAFNOTE_REPORT_FROM")
	if from == "" {
		from = "Leafnote Reports <reports@leafnote.app>"
	}
	return ReportConfig{
		MailAPIURL: apiURL,
		MailAPIKey: os.Getenv("LEAFNOTE_MAIL_API_KEY"),
		From:       from,
		To:         os.Getenv("LEAFNOTE_REPORT_TO"),
	}
}
