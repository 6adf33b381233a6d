package calculator

const (
	// DaysPerYear is the mean tropical year, not 365.
	DaysPerYear   = 365.2422
	HoursPerDay   = 24
	MonthsPerYear = 12
	MsPerDay      = 24 * 60 * 60 * 1000
)

// HPYToAPD converts an hourly rate to a daily rate.
func HPYToAPD(rate float64) float64 {
	return rate * HoursPerDay
}

// HPYToAPY converts an hourly rate to an annual rate.
func HPYToAPY(rate float64) float64 {
	return HPYToAPD(rate) * DaysPerYear
}

// HPYToAPM converts an hourly rate to a monthly rate.
func HPYToAPM(rate float64) float64 {
	return HPYToAPY(rate) / MonthsPerYear
}

// APYToHPY converts an annual rate back to an hourly rate.
func APYToHPY(rate float64) float64 {
	return rate / HoursPerDay / DaysPerYear
}

// ApplyRateDiscount lowers rate by discount percent (0-100).
func ApplyRateDiscount(rate, discount float64) float64 {
	return rate * (1 - discount/100)
}

// APYPercent returns the annual rate of an hourly rate, in percent.
func APYPercent(hourly float64) float64 {
	return HPYToAPY(hourly) * 100
}

// HPYFromAPYPercent converts an annual percentage back to an hourly rate.
func HPYFromAPYPercent(apy float64) float64 {
	return APYToHPY(apy / 100)
}
