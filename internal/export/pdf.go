package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/pdc-tracking/backend/internal/models"
)

// ReportLine is one labeled value of the KPI report.
type ReportLine struct {
	Label string
	Value string
}

// ReportSection is a titled group of report lines.
type ReportSection struct {
	Title string
	Lines []ReportLine
}

// ReportSections lays out k in the four fixed report sections. Values are
// formatted from k as is; nothing is recomputed except usage days.
func ReportSections(device string, k models.KPISummary) []ReportSection {
	kwh := func(v float64) string { return fmt.Sprintf("%.1f kWh", v) }
	celsius := func(v float64) string { return fmt.Sprintf("%.1f °C", v) }

	return []ReportSection{
		{
			Title: "Stato generale",
			Lines: []ReportLine{
				{"Dispositivo", device},
				{"Ore totali di lavoro", fmt.Sprintf("%d", k.OperatingHours)},
				{"Utilizzo (giorni)", fmt.Sprintf("%.1f", k.UsageDays())},
				{"Allarmi", fmt.Sprintf("%d", k.Alerts)},
			},
		},
		{
			Title: "Consumi elettrici",
			Lines: []ReportLine{
				{"Consumo totale", kwh(k.TotalConsumption)},
				{"Consumo giornaliero", kwh(k.DailyConsumption)},
				{"Consumo settimanale", kwh(k.WeeklyConsumption)},
				{"Consumo mensile", kwh(k.MonthlyConsumption)},
			},
		},
		{
			Title: "Dati ultimo noleggio",
			Lines: []ReportLine{
				{"Durata utilizzo (giorni)", fmt.Sprintf("%.1f", k.UsageDays())},
				{"Consumo ultima settimana", kwh(k.WeeklyConsumption)},
				{"Consumo ultimo mese", kwh(k.MonthlyConsumption)},
			},
		},
		{
			Title: "Temperatura di mandata / ritorno",
			Lines: []ReportLine{
				{"Max temperatura di mandata", celsius(k.SupplyMax)},
				{"Min temperatura di mandata", celsius(k.SupplyMin)},
				{"Avg temperatura di mandata", celsius(k.SupplyAvg)},
				{"Max temperatura di ritorno", celsius(k.ReturnMax)},
				{"Min temperatura di ritorno", celsius(k.ReturnMin)},
				{"Avg temperatura di ritorno", celsius(k.ReturnAvg)},
			},
		},
	}
}

// WriteKPIReport renders the KPI report of device as a single-page A4 PDF.
func WriteKPIReport(w io.Writer, device string, k models.KPISummary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := fmt.Sprintf("Report KPI - %s", device)
	pdf.SetTitle(title, true)
	pdf.SetCreator("pdc-tracking", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, section := range ReportSections(device, k) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetFillColor(230, 236, 245)
		pdf.CellFormat(0, 9, tr(section.Title), "", 1, "L", true, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Helvetica", "", 11)
		for _, line := range section.Lines {
			pdf.CellFormat(90, 7, tr(line.Label+":"), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, tr(line.Value), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PDFFilename is the download name of a device KPI report.
func PDFFilename(device string) string {
	return fmt.Sprintf("%s_kpi_report.pdf", device)
}
