package scheduler

import "time"

// Config carries the cron expressions for each alert job. The defaults
// stagger the jobs so a single instance never runs two heavy checks at
// once.
type Config struct {
	TaskSpec             string
	QuotaSpec            string
	ActivitySpec         string
	MarketingWeeklySpec  string
	MarketingMonthlySpec string
	JobTimeout           time.Duration
}

func (c Config) withDefaults() Config {
	if c.TaskSpec == "" {
		c.TaskSpec = "0 8 * * *"
	}
	if c.QuotaSpec == "" {
		c.QuotaSpec = "30 8 * * *"
	}
	if c.ActivitySpec == "" {
		c.ActivitySpec = "0 9 * * MON"
	}
	if c.MarketingWeeklySpec == "" {
		c.MarketingWeeklySpec = "30 9 * * MON"
	}
	if c.MarketingMonthlySpec == "" {
		c.MarketingMonthlySpec = "0 10 1 * *"
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 5 * time.Minute
	}
	return c
}
