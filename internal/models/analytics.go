package models

// Statistics represents aggregate figures for one buyer's schedule
type Statistics struct {
	Total          int     `json:"total"`
	Paid           int     `json:"paid"`
	Upcoming       int     `json:"upcoming"`
	Overdue        int     `json:"overdue"`
	Cancelled      int     `json:"cancelled"`
	TotalAmount    float64 `json:"total_amount"`    // sum of amounts after interest
	AmountPaid     float64 `json:"amount_paid"`     // sum of recorded payments
	Remaining      float64 `json:"remaining"`       // after-interest amount of unpaid rows
	TotalInterest  float64 `json:"total_interest"`  // sum of interest amounts
	PaidPercentage int     `json:"paid_percentage"` // rounded to the nearest integer
}

// SavingsRate is a published reference value for the savings-rate component
type SavingsRate struct {
	Date    string  `json:"date"` // Format: YYYY-MM-DD
	Percent float64 `json:"percent"`
}
