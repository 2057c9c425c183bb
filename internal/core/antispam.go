package core

// AntiSpamDashboard is the read-only limits/reputation snapshot from the
// anti-spam subsystem. Consumed for display only.
type AntiSpamDashboard struct {
	Success    bool             `json:"success"`
	Limits     SendingLimits    `json:"limits"`
	Reputation SenderReputation `json:"reputation"`
	Warnings   []string         `json:"warnings,omitempty"`
}

type SendingLimits struct {
	HourlyLimit int `json:"hourly_limit"`
	HourlySent  int `json:"hourly_sent"`
	DailyLimit  int `json:"daily_limit"`
	DailySent   int `json:"daily_sent"`
}

// WarmupStatus values: new, warming, active, restricted.
type SenderReputation struct {
	Score         float64 `json:"score"`
	WarmupStatus  string  `json:"warmup_status"`
	BounceRate    float64 `json:"bounce_rate"`
	ComplaintRate float64 `json:"complaint_rate"`
}
