package models

// KPISummary holds the scalar KPIs of one device. Consumption values are kWh,
// temperatures °C, all rounded to one decimal.
type KPISummary struct {
	Device             string  `json:"device"`
	OperatingHours     int     `json:"operatingHours"`
	Alerts             int     `json:"alerts"`
	TotalConsumption   float64 `json:"totalConsumption"`
	DailyConsumption   float64 `json:"dailyConsumption"`
	WeeklyConsumption  float64 `json:"weeklyConsumption"`
	MonthlyConsumption float64 `json:"monthlyConsumption"`
	SupplyMax          float64 `json:"supplyMax"`
	SupplyMin          float64 `json:"supplyMin"`
	SupplyAvg          float64 `json:"supplyAvg"`
	ReturnMax          float64 `json:"returnMax"`
	ReturnMin          float64 `json:"returnMin"`
	ReturnAvg          float64 `json:"returnAvg"`
}

// UsageDays is the operating time expressed in days.
func (k KPISummary) UsageDays() float64 {
	return float64(k.OperatingHours) / 24
}
