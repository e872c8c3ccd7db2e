package irrigation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const plantingDateLayout = "2006-01-02"

// Field mirrors a cultivated plot as returned by /fields.
type Field struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Size          float64 `json:"size"`
	SensorDensity float64 `json:"sensor_density"`
	CropTypeID    *int64  `json:"crop_type_id"`
	PlantingDate  *string `json:"planting_date"`
}

// ParsedPlantingDate returns the planting date, or the zero time when the
// field has none or it is not in YYYY-MM-DD form.
func (f Field) ParsedPlantingDate() time.Time {
	if f.PlantingDate == nil {
		return time.Time{}
	}
	t, err := time.Parse(plantingDateLayout, strings.TrimSpace(*f.PlantingDate))
	if err != nil {
		return time.Time{}
	}
	return t
}

// SensorReadings is the payload of /sensors, kept as raw JSON.
type SensorReadings json.RawMessage

// MarshalJSON returns the raw payload.
func (s SensorReadings) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

// UnmarshalJSON stores a copy of data.
func (s *SensorReadings) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("sensor readings: unmarshal into nil pointer")
	}
	*s = append((*s)[:0], data...)
	return nil
}

// Pretty returns the payload indented for display.
func (s SensorReadings) Pretty() string {
	if len(s) == 0 {
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, s, "", "  "); err != nil {
		return string(s)
	}
	return out.String()
}

// Reading is the backend's usual shape for one sensor report. The client
// does not require it; see SensorReadings.Readings.
type Reading struct {
	SensorID int64         `json:"sensor_id"`
	FieldID  int64         `json:"field_id"`
	RawData  []Measurement `json:"raw_data"`
}

// Measurement is one value inside a Reading.
type Measurement struct {
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"valeur"`
	Unit      string          `json:"unit"`
	Timestamp string          `json:"timestamp"`
}

// ValueString renders the measurement value. Composite values such as NPK
// are rendered as sorted key=value pairs.
func (m Measurement) ValueString() string {
	raw := bytes.TrimSpace(m.Value)
	if len(raw) == 0 {
		return ""
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, obj[k]))
		}
		return strings.Join(parts, ", ")
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return string(raw)
}

// Readings interprets the payload as a list of Reading. The second return is
// false when the payload has another shape; callers then fall back to Pretty.
func (s SensorReadings) Readings() ([]Reading, bool) {
	if len(bytes.TrimSpace(s)) == 0 {
		return nil, false
	}
	// Extra keys are tolerated; sensor_id and raw_data mark a reading.
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(s, &objects); err != nil {
		return nil, false
	}
	for _, obj := range objects {
		if _, ok := obj["sensor_id"]; !ok {
			return nil, false
		}
		if _, ok := obj["raw_data"]; !ok {
			return nil, false
		}
	}
	var readings []Reading
	if err := json.Unmarshal(s, &readings); err != nil {
		return nil, false
	}
	return readings, true
}

// IrrigationStatus is the reply to start and stop requests.
type IrrigationStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
