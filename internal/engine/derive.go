package engine

import "github.com/riskwatch/riskwatch/internal/models"

// MaxDisplayAlerts caps how many high-risk alerts the dashboard surfaces.
const MaxDisplayAlerts = 3

// HighRiskAlerts selects the first MaxDisplayAlerts HIGH alerts in their
// existing order. An empty result means the alert surface is suppressed.
// Pure function of the alert list; recomputed on every read.
func HighRiskAlerts(alerts []models.AlertRecord) []models.AlertRecord {
	var out []models.AlertRecord
	for _, a := range alerts {
		if a.RiskLevel != models.RiskHigh {
			continue
		}
		out = append(out, a)
		if len(out) == MaxDisplayAlerts {
			break
		}
	}
	return out
}

// Stats summarises the snapshot for the dashboard's stat cards. Unknown
// risk levels count toward the total but no per-level bucket.
type Stats struct {
	CitiesMonitored  int `json:"cities_monitored"`
	HighRiskCities   int `json:"high_risk_cities"`
	MediumRiskCities int `json:"medium_risk_cities"`
	LowRiskCities    int `json:"low_risk_cities"`
	ActiveAlerts     int `json:"active_alerts"`
}

// ComputeStats derives Stats from a snapshot and alert list.
func ComputeStats(cities []models.WeatherRecord, alerts []models.AlertRecord) Stats {
	st := Stats{
		CitiesMonitored: len(cities),
		ActiveAlerts:    len(alerts),
	}
	for _, c := range cities {
		switch c.RiskLevel {
		case models.RiskHigh:
			st.HighRiskCities++
		case models.RiskMedium:
			st.MediumRiskCities++
		case models.RiskLow:
			st.LowRiskCities++
		}
	}
	return st
}
