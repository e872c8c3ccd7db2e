package stub

import "github.com/five82/furrow/internal/irrigation"

// SampleFields returns the demo field set.
func SampleFields() []irrigation.Field {
	maize := int64(1)
	planted := "2025-04-18"
	return []irrigation.Field{
		{
			ID: 1, Name: "North maize", Location: "Upper terrace",
			Latitude: 33.5731, Longitude: -7.5898,
			Size: 2.4, SensorDensity: 0.5,
			CropTypeID: &maize, PlantingDate: &planted,
		},
		{
			ID: 2, Name: "River parcel", Location: "East bank",
			Latitude: 33.5702, Longitude: -7.5811,
			Size: 1.1, SensorDensity: 0.3,
		},
	}
}

// SampleReadings returns demo sensor readings in the backend's usual shape.
func SampleReadings() irrigation.SensorReadings {
	return irrigation.SensorReadings(`[
  {"sensor_id": 10, "field_id": 1, "raw_data": [
    {"type": "humidity", "valeur": 27.4, "unit": "%", "timestamp": "2025-06-02T06:00:00"},
    {"type": "temperature", "valeur": 24.1, "unit": "C", "timestamp": "2025-06-02T06:00:00"},
    {"type": "npk", "valeur": {"n": 12, "p": 5, "k": 9}, "unit": "mg/kg", "timestamp": "2025-06-02T06:00:00"}
  ]},
  {"sensor_id": 11, "field_id": 2, "raw_data": [
    {"type": "humidity", "valeur": 41.0, "unit": "%", "timestamp": "2025-06-02T06:00:00"},
    {"type": "rainfall", "valeur": 0, "unit": "mm", "timestamp": "2025-06-02T06:00:00"}
  ]}
]`)
}
