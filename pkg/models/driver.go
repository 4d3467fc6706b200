package models

// DriverProfile is one-to-one with a DRIVER user. The durable IsOnline flag
// mirrors the driver's last requested state; discoverability for dispatch is
// decided by the ephemeral presence entry, which can expire while this flag
// still reads true.
type DriverProfile struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	IDCardURL       string  `json:"id_card_url"`
	LicenseImageURL string  `json:"license_image_url"`
	LicenseNumber   string  `json:"license_number"`
	VehicleModel    *string `json:"vehicle_model"`
	VehiclePlate    *string `json:"vehicle_plate"`
	VehicleColor    *string `json:"vehicle_color"`
	VehicleType     *string `json:"vehicle_type"`
	IsOnline        bool    `json:"is_online"`
}

type Vehicle struct {
	Model         string `json:"model"`
	Plate         string `json:"plate"`
	Color         string `json:"color"`
	Type          string `json:"type"`
	LicenseNumber string `json:"license_number"`
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NearbyDriver is a dispatch query hit: a discoverable, cross-checked driver
// and their distance from the query point in kilometers.
type NearbyDriver struct {
	UserID     string  `json:"user_id"`
	ProfileID  string  `json:"profile_id"`
	DistanceKM float64 `json:"distance_km"`
}
