package models

type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
)

type DashboardStats struct {
	CurrentPlayers int             `json:"currentPlayers"`
	TotalTables    int             `json:"totalTables"`
	ActiveTables   int             `json:"activeTables"`
	TotalSeats     int             `json:"totalSeats"`
	OccupancyRate  int             `json:"occupancyRate"`
	Congestion     CongestionLevel `json:"congestionLevel"`
}

type TableStats struct {
	TableID        string          `json:"tableId"`
	Name           string          `json:"name"`
	IsActive       bool            `json:"isActive"`
	CurrentPlayers int             `json:"currentPlayers"`
	MaxSeats       int             `json:"maxSeats"`
	Occupancy      int             `json:"occupancy"`
	Congestion     CongestionLevel `json:"congestionLevel"`
}

type Dashboard struct {
	Shop        Shop           `json:"shop"`
	Stats       DashboardStats `json:"stats"`
	Tables      []TableStats   `json:"tables"`
	Tournaments []ClockState   `json:"tournaments"`
}

// ShopSummary is a shop listing entry with its live occupancy.
type ShopSummary struct {
	Shop
	CurrentPlayers int             `json:"currentPlayers"`
	ActiveTables   int             `json:"activeTables"`
	TotalTables    int             `json:"totalTables"`
	Congestion     CongestionLevel `json:"congestionLevel"`
}
