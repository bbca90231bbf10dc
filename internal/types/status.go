package types

// Measurement is a single telescope-status reading with its unit, e.g.
// {Value: 2.3, Unit: "uA"}.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// StatusSnapshot is one read-only observation of the telescope status
// source, consumed once per overview assembly. Any failure to obtain a
// snapshot degrades the status tile to blank; the snapshot itself carries
// no error state.
type StatusSnapshot struct {
	// Sky brightness from the sky quality meter.
	SkyMagnitude Measurement `json:"sky_magnitude"`

	// Sensor current statistics.
	CurrentMin    Measurement `json:"current_min"`
	CurrentMedian Measurement `json:"current_median"`
	CurrentMax    Measurement `json:"current_max"`
	Power         Measurement `json:"power"`

	// Temperatures, degrees Celsius.
	OutsideTemp   float64 `json:"outside_temp"`
	ContainerTemp float64 `json:"container_temp"`
	CameraTemp    float64 `json:"camera_temp"`

	// Current pointing.
	SourceName     string      `json:"source_name"`
	Azimuth        Measurement `json:"azimuth"`
	ZenithDistance Measurement `json:"zenith_distance"`
}
