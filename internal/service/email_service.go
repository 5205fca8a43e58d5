package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"
)

const resendURL = "https://api.resend.com/emails"

var ErrEmailDisabled = errors.New("email delivery is not configured")

// EmailService sends transactional mail through the Resend HTTP API.
type EmailService struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

func NewEmailService(apiKey, from string) *EmailService {
	return &EmailService{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *EmailService) SendPasswordReset(ctx context.Context, to, code string) error {
	if s.apiKey == "" {
		return ErrEmailDisabled
	}

	payload := map[string]any{
		"from":    s.from,
		"to":      []string{to},
		"subject": "Anamnese - Código de redefinição de senha",
		"html":    buildResetEmail(code),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("resend api error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func buildResetEmail(code string) string {
	return `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:Arial,sans-serif;background:#f4f4f4;padding:20px;">
  <div style="max-width:480px;margin:0 auto;background:#fff;border-radius:8px;padding:32px;">
    <h2 style="color:#333;">Redefinição de senha</h2>
    <p>Olá,</p>
    <p>Use o código de 6 dígitos abaixo para redefinir sua senha:</p>
    <div style="text-align:center;margin:24px 0;">
      <span style="font-size:36px;font-weight:bold;letter-spacing:8px;color:#8E4585;">` + html.EscapeString(code) + `</span>
    </div>
    <p>Este código é válido por <strong>15 minutos</strong>.</p>
    <p>Se você não solicitou a redefinição, ignore este e-mail.</p>
    <hr style="border:none;border-top:1px solid #eee;margin:24px 0;">
    <p style="color:#999;font-size:12px;">Ficha de Anamnese</p>
  </div>
</body>
</html>`
}
