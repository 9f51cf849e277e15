package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"leafnote/pkg/utils"
)

// Mailer delivers the weekly report through a Resend-style email API.
// A missing API key turns delivery into a logged no-op so local runs
// don't need mail credentials.
type Mailer struct {
	Config utils.ReportConfig
	HTTP   *http.Client
}

func NewMailer(cfg utils.ReportConfig) *Mailer {
	return &Mailer{
		Config: cfg,
		HTTP:   &http.Client{Timeout: 15 * time.Second},
	}
}

type attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

type mailReq struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text"`
	Attachments []attachment `json:"attachments,omitempty"`
}

func (m *Mailer) Send(ctx context.Context, rep *Report) error {
	if m.Config.MailAPIKey == "" || m.Config.To == "" {
		log.Printf("[report] mail not configured, skipping delivery")
		return nil
	}

	body := mailReq{
		From:    m.Config.From,
		To:      []string{m.Config.To},
		Subject: fmt.Sprintf("Leafnote weekly report %s", rep.WindowEnd.Format("2006-01-02")),
		Text:    rep.Summary(),
		Attachments: []attachment{
			{Filename: "users.csv", Content: base64.StdEncoding.EncodeToString(rep.UserCSV)},
			{Filename: "books.csv", Content: base64.StdEncoding.EncodeToString(rep.BookCSV)},
		},
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Config.MailAPIURL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.Config.MailAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send mail: unexpected status %d", resp.StatusCode)
	}
	return nil
}
