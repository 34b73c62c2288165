// Package recipient decides who gets copied on an alert and how the
// subject is marked for users still inside their onboarding window.
package recipient

import (
	"time"

	"github.com/copperline/crm/internal/alert/domain"
)

const OnboardingPrefix = "[ONBOARDING] "

type Resolver struct {
	hr         []string
	leadership []string
	graceDays  int
}

func NewResolver(hr, leadership []string, graceDays int) *Resolver {
	if graceDays <= 0 {
		graceDays = 14
	}
	return &Resolver{hr: hr, leadership: leadership, graceDays: graceDays}
}

// ResolveCc builds the escalation list. RED pulls in HR and leadership,
// YELLOW stays with the direct manager, GREEN goes to HR for recognition.
func (r *Resolver) ResolveCc(severity domain.Severity, managerEmail string) []string {
	switch severity {
	case domain.SeverityRed:
		cc := make([]string, 0, len(r.hr)+len(r.leadership))
		cc = append(cc, r.hr...)
		cc = append(cc, r.leadership...)
		return cc
	case domain.SeverityYellow:
		if managerEmail == "" {
			return nil
		}
		return []string{managerEmail}
	case domain.SeverityGreen:
		return append([]string(nil), r.hr...)
	default:
		return nil
	}
}

// ApplyGracePeriod prefixes the subject while the user is inside the
// onboarding window. A nil hire date means full accountability from day
// one, so no prefix.
func (r *Resolver) ApplyGracePeriod(subject string, hiredAt *time.Time, now time.Time) string {
	if hiredAt == nil {
		return subject
	}
	if now.Sub(*hiredAt) < time.Duration(r.graceDays)*24*time.Hour {
		return OnboardingPrefix + subject
	}
	return subject
}
