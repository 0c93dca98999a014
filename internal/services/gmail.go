// Gmail API implementation of [Mailer]
//
// Mail is sent as the authenticated admin account via users.messages.send
// with a raw RFC 822 payload.
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/desertthunder/youtubefy/internal/web"
)

const gmailBaseURL = "https://gmail.googleapis.com/gmail/v1"

// GmailService implements [Mailer]. Like [YouTubeService] it expects an HTTP
// client already authenticated as the admin.
type GmailService struct {
	baseURL    string
	httpClient *http.Client
	sender     string
	logger     *log.Logger
}

func NewGmailService(client *http.Client, sender string, logger *log.Logger) *GmailService {
	if client == nil {
		client = http.DefaultClient
	}
	return &GmailService{
		baseURL:    gmailBaseURL,
		httpClient: client,
		sender:     sender,
		logger:     logger,
	}
}

// Send delivers a plain-text message from the configured sender.
func (g *GmailService) Send(ctx context.Context, to, subject, body string) error {
	return g.send(ctx, to, subject, body, "text/plain")
}

func (g *GmailService) send(ctx context.Context, to, subject, body, contentType string) error {
	message := strings.Join([]string{
		"From: " + g.sender,
		"To: " + to,
		"Subject: " + subject,
		"Content-Type: " + contentType + "; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	payload, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(message)),
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	endpoint := g.baseURL + "/users/me/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: gmail status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	g.logger.Info("mail sent", "to", to, "subject", subject)
	return nil
}

// SendMagicLink mails the one-time login link.
func (g *GmailService) SendMagicLink(ctx context.Context, to, link string) error {
	body, err := web.MagicLinkEmail(link)
	if err != nil {
		return err
	}
	return g.send(ctx, to, "Your sign-in link", body, "text/html")
}
