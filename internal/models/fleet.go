package models

// StatusCategory is the operational status of a device on the fleet map.
type StatusCategory string

const (
	StatusAvailable     StatusCategory = "available"
	StatusOccupied      StatusCategory = "occupied"
	StatusReturnPending StatusCategory = "return-pending"
)

// FleetStatus is the map marker state of one device.
type FleetStatus struct {
	Device      Device         `json:"device"`
	Status      StatusCategory `json:"status"`
	Label       string         `json:"label"`
	Maintenance bool           `json:"maintenance"`
	Color       string         `json:"color"`
	Icon        string         `json:"icon"`
}

// FleetSummary holds the fleet counters shown above the map.
type FleetSummary struct {
	Total       int                    `json:"total"`
	ByStatus    map[StatusCategory]int `json:"byStatus"`
	Maintenance int                    `json:"maintenance"`
}
