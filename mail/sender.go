package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Config carries the credentials of the mail relay api.
type Config struct {
	RelayURL     string
	ColaKey      string
	SmtpEmail    string
	SmtpCode     string
	SmtpCodeType string
	FromTitle    string
	Recipients   []string
}

// Sender delivers notification mails through an HTTP mail relay. One
// relay call is made per recipient.
type Sender struct {
	config     Config
	httpClient *http.Client
}

func NewSender(config Config, timeout time.Duration) *Sender {
	return &Sender{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type relayRequest struct {
	ColaKey       string `json:"ColaKey"`
	FromTitle     string `json:"fromTitle"`
	Subject       string `json:"subject"`
	Content       string `json:"content"`
	IsTextContent bool   `json:"isTextContent"`
	ToMail        string `json:"tomail"`
	SmtpCode      string `json:"smtpCode"`
	SmtpEmail     string `json:"smtpEmail"`
	SmtpCodeType  string `json:"smtpCodeType"`
}

type relayResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// SendToAll attempts delivery to every configured recipient. A failure
// for one recipient is logged and does not block the others. An error
// is returned if any recipient could not be reached.
func (s *Sender) SendToAll(ctx context.Context, subject, content string) error {
	var failed int
	for _, recipient := range s.config.Recipients {
		err := s.send(ctx, recipient, subject, content)
		if err != nil {
			log.Printf("[ERROR] sending mail to [%s]: %v", recipient, err)
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("sending mail [%s] failed for [%d] of [%d] recipients", subject, failed, len(s.config.Recipients))
	}
	return nil
}

func (s *Sender) send(ctx context.Context, recipient, subject, content string) error {
	payload, err := json.Marshal(relayRequest{
		ColaKey:       s.config.ColaKey,
		FromTitle:     s.config.FromTitle,
		Subject:       subject,
		Content:       content,
		IsTextContent: true,
		ToMail:        recipient,
		SmtpCode:      s.config.SmtpCode,
		SmtpEmail:     s.config.SmtpEmail,
		SmtpCodeType:  s.config.SmtpCodeType,
	})
	if err != nil {
		return errors.Wrap(err, "marshalling relay request")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.RelayURL, bytes.NewBuffer(payload))
	if err != nil {
		return errors.Wrap(err, "creating relay request")
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return errors.Wrap(err, "calling mail relay")
	}
	defer func() {
		err := response.Body.Close()
		if err != nil {
			log.Printf("[ERROR] closing response body: %v", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected response status [%d]", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.Wrap(err, "reading relay response")
	}
	var relayResp relayResponse
	err = json.Unmarshal(body, &relayResp)
	if err != nil {
		return errors.Wrap(err, "decoding relay response")
	}
	if relayResp.Code != 0 {
		return errors.Errorf("relay rejected mail: code [%d] message [%s]", relayResp.Code, relayResp.Msg)
	}

	return nil
}
