package sim

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"index",
		"time",
		"mode",
		"price",
		"award_kw",
		"cooling_setpoint",
		"heating_setpoint",
		"indoor_temp",
		"mass_temp",
		"outside_temp",
		"hvac_on",
		"hvac_kw",
		"energy_kwh",
		"cost",
		"cum_energy_kwh",
		"cum_cost",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			string(r.Mode),
			fmtFloat(r.Price),
			fmtFloat(r.Award),
			fmtFloat(r.CoolingSetpoint),
			fmtFloat(r.HeatingSetpoint),
			fmtFloat(r.IndoorAirTemp),
			fmtFloat(r.MassTemp),
			fmtFloat(r.OutsideAirTemp),
			strconv.FormatBool(r.HVACOn),
			fmtFloat(r.HVACKW),
			fmtFloat(r.EnergyKWH),
			fmtFloat(r.Cost),
			fmtFloat(r.CumEnergyKWH),
			fmtFloat(r.CumCost),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
