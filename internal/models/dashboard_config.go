package models

type Dashboard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type DashboardCategory struct {
	Name       string      `json:"name"`
	Dashboards []Dashboard `json:"dashboards"`
}

// DashboardConfig holds the whole embedded-BI catalog as one JSON document
// keyed by a fixed id ("main"). Categories map ids to named dashboard lists.
type DashboardConfig struct {
	ID   string                       `json:"id" gorm:"type:varchar(36);primaryKey"`
	Data map[string]DashboardCategory `json:"data" gorm:"type:jsonb;serializer:json"`
}

func (DashboardConfig) TableName() string {
	return "dashboard_configs"
}
