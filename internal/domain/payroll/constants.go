package payroll

const (
	HoursPerMonth      = 240.0
	DaysPerMonth       = 30.0
	OvertimeMultiplier = 1.5

	StatusActive   = "active"
	StatusInactive = "inactive"

	SortByName     = "name"
	SortByPosition = "position"
	SortByNetPay   = "netPay"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)
