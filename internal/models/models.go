package models

import "time"

const (
	ServiceConsultation = "consultation"
	ServiceAdmission    = "admission"
	ServiceContest      = "contest"
	ServiceOnline       = "online"
)

const (
	StatusPending   = "PENDING"
	StatusAccepted  = "ACCEPTED"
	StatusDone      = "DONE"
	StatusCancelled = "CANCELLED"
)

func KnownService(s string) bool {
	switch s {
	case ServiceConsultation, ServiceAdmission, ServiceContest, ServiceOnline:
		return true
	}
	return false
}

func KnownStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// TerminalStatus reports whether a ticket in this status accepts no further
// transitions.
func TerminalStatus(s string) bool {
	return s == StatusDone || s == StatusCancelled
}

type Ticket struct {
	ID             string    `json:"id"`
	Number         string    `json:"number"`
	Service        string    `json:"service"`
	Category       string    `json:"category"`
	PayType        string    `json:"pay_type"`
	Profile        string    `json:"profile"`
	Track          string    `json:"track"`
	Desk           *int      `json:"desk"`
	FIO            string    `json:"fio"`
	Phone          string    `json:"phone"`
	SocialCategory string    `json:"social_category"`
	IsOnline       bool      `json:"is_online"`
	MeetingType    string    `json:"meeting_type"`
	Whatsapp       string    `json:"whatsapp"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type OperatorProfile struct {
	Operator string `json:"operator"`
	Desk     int    `json:"desk"`
}

type OperatorLog struct {
	ID           int64          `json:"id"`
	Operator     string         `json:"operator"`
	Desk         int            `json:"desk"`
	Action       string         `json:"action"`
	TicketNumber *string        `json:"ticket_number"`
	Meta         map[string]any `json:"meta"`
	CreatedAt    time.Time      `json:"created_at"`
}

type FeatureFlag struct {
	Key       string    `json:"key"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UIText struct {
	Key  string `json:"key"`
	Lang string `json:"lang"`
	Text string `json:"text"`
}
