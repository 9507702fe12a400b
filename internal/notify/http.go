package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/deskline/backend/internal/models"
)

type HTTPAdapter struct {
	BaseURL string
	Client  *http.Client
}

type requestBody struct {
	Whatsapp string `json:"whatsapp"`
	Number   string `json:"number"`
	Desk     *int   `json:"desk"`
	FIO      string `json:"fio"`
}

func (h HTTPAdapter) TicketCalled(ctx context.Context, t models.Ticket) error {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 10 * time.Second}
	}

	payload := requestBody{
		Whatsapp: t.Whatsapp,
		Number:   t.Number,
		Desk:     t.Desk,
		FIO:      t.FIO,
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/notify", bytes.NewBuffer(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("notify service error")
	}
	return nil
}
