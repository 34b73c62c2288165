// Package compose renders alert subjects and bodies. Which template and
// what data is the engine's decision; the templates themselves carry no
// policy.
package compose

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/copperline/crm/internal/alert/classify"
	taskdomain "github.com/copperline/crm/internal/task/domain"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type Composer struct {
	tmpl *template.Template
}

func New() (*Composer, error) {
	tmpl, err := template.New("alerts").Funcs(template.FuncMap{
		"money": func(cents int64) string {
			return fmt.Sprintf("$%.2f", float64(cents)/100)
		},
		"pct": func(ratio float64) string {
			return fmt.Sprintf("%.0f%%", ratio)
		},
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse alert templates: %w", err)
	}
	return &Composer{tmpl: tmpl}, nil
}

// Message is a rendered notification ready for the mailer.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

type QuotaData struct {
	UserName      string
	Period        string
	Actual        int64
	Target        int64
	Ratio         float64
	DaysRemaining int
	StreakWon     bool
	StreakLength  int
}

func (c *Composer) Quota(kind string, data QuotaData) (Message, error) {
	var subject string
	switch kind {
	case "quota-green":
		subject = fmt.Sprintf("Quota achieved: %s at %.0f%% for %s", data.UserName, data.Ratio, data.Period)
	case "quota-yellow":
		subject = fmt.Sprintf("Quota progress check: %s at %.0f%% for %s", data.UserName, data.Ratio, data.Period)
	default:
		subject = fmt.Sprintf("Quota at risk: %s at %.0f%% with %d days left", data.UserName, data.Ratio, data.DaysRemaining)
	}

	html, err := c.render("quota.html.tmpl", data)
	if err != nil {
		return Message{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Quota report for %s (%s)\n", data.UserName, data.Period)
	fmt.Fprintf(&text, "Closed-won revenue: $%.2f of $%.2f (%.0f%%)\n",
		float64(data.Actual)/100, float64(data.Target)/100, data.Ratio)
	fmt.Fprintf(&text, "Days remaining in period: %d\n", data.DaysRemaining)
	if data.StreakLength > 0 {
		result := "loss"
		if data.StreakWon {
			result = "win"
		}
		fmt.Fprintf(&text, "Current %s streak: %d\n", result, data.StreakLength)
	}

	return Message{Subject: subject, HTMLBody: html, TextBody: text.String()}, nil
}

type ActivityData struct {
	UserName string
	Period   string
	Counts   struct {
		Calls    int
		Emails   int
		Meetings int
		Notes    int
	}
	Total    int
	Expected int
	Ratio    float64
}

func (c *Composer) Activity(kind string, data ActivityData) (Message, error) {
	subject := fmt.Sprintf("Low activity volume: %s at %.0f%% of expected", data.UserName, data.Ratio)
	if kind == "activity-green" {
		subject = fmt.Sprintf("Outstanding activity volume: %s at %.0f%% of expected", data.UserName, data.Ratio)
	}

	html, err := c.render("activity.html.tmpl", data)
	if err != nil {
		return Message{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Activity report for %s (%s)\n", data.UserName, data.Period)
	fmt.Fprintf(&text, "Calls: %d  Emails: %d  Meetings: %d  Notes: %d\n",
		data.Counts.Calls, data.Counts.Emails, data.Counts.Meetings, data.Counts.Notes)
	fmt.Fprintf(&text, "Total %d of %d expected (%.0f%%)\n", data.Total, data.Expected, data.Ratio)

	return Message{Subject: subject, HTMLBody: html, TextBody: text.String()}, nil
}

type TaskData struct {
	UserName string
	Overdue  []taskdomain.OverdueTask
}

func (c *Composer) Tasks(kind string, data TaskData) (Message, error) {
	subject := fmt.Sprintf("Overdue tasks: %s has %d task(s) past due", data.UserName, len(data.Overdue))
	if kind == "task-red" {
		subject = fmt.Sprintf("Action required: %s has %d overdue tasks", data.UserName, len(data.Overdue))
	}

	html, err := c.render("tasks.html.tmpl", data)
	if err != nil {
		return Message{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Overdue tasks for %s:\n", data.UserName)
	for _, t := range data.Overdue {
		fmt.Fprintf(&text, "- %s (due %s)\n", t.Title, t.DueAt.Format("2006-01-02"))
	}

	return Message{Subject: subject, HTMLBody: html, TextBody: text.String()}, nil
}

type MarketingData struct {
	UserName string
	Period   string
	Report   classify.MarketingReport
}

func (c *Composer) Marketing(data MarketingData) (Message, error) {
	subject := fmt.Sprintf("Campaign performance: %s at %.0f%% success for %s",
		data.UserName, data.Report.SuccessRatio, data.Period)

	html, err := c.render("marketing.html.tmpl", data)
	if err != nil {
		return Message{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Marketing report for %s (%s)\n", data.UserName, data.Period)
	fmt.Fprintf(&text, "Success ratio: %.0f%% (%d of %d recorded outcomes, %d tasks total)\n",
		data.Report.SuccessRatio, data.Report.Successes, data.Report.Recorded, data.Report.TotalTasks)
	for _, b := range data.Report.ByType {
		fmt.Fprintf(&text, "- %s: %d/%d recorded, %.0f%% success\n", b.Type, b.Recorded, b.Total, b.Ratio)
	}
	if data.Report.BestPerforming != "" {
		fmt.Fprintf(&text, "Best performing: %s\n", data.Report.BestPerforming)
	}
	if data.Report.WorstPerforming != "" {
		fmt.Fprintf(&text, "Worst performing: %s\n", data.Report.WorstPerforming)
	}

	return Message{Subject: subject, HTMLBody: html, TextBody: text.String()}, nil
}

func (c *Composer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
