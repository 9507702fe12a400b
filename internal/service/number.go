package service

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/deskline/backend/internal/models"
)

// Display numbers start at 101 within each prefix.
const firstNumber = 101

var numberSuffix = regexp.MustCompile(`-(\d+)$`)

// PrefixForService maps a service to its single-letter number prefix.
// Unknown services fall back to a generic "T".
func PrefixForService(service string) string {
	switch service {
	case models.ServiceConsultation:
		return "C"
	case models.ServiceAdmission:
		return "A"
	case models.ServiceContest:
		return "G"
	case models.ServiceOnline:
		return "O"
	}
	return "T"
}

// NextNumber derives the next display number from the most recently created
// number of the prefix. An empty or unparseable last number restarts the
// sequence at <prefix>-101.
func NextNumber(prefix, last string) string {
	if last == "" {
		return fmt.Sprintf("%s-%d", prefix, firstNumber)
	}
	m := numberSuffix.FindStringSubmatch(last)
	if m == nil {
		return fmt.Sprintf("%s-%d", prefix, firstNumber)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, firstNumber)
	}
	return fmt.Sprintf("%s-%d", prefix, n+1)
}
