package models

import "time"

// CurrentTimeModel Current time specific model
type CurrentTimeModel struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
	Timezone     string `json:"timezone"`
	RushHour     bool   `json:"rushHour"`
}

// CurrentTimeData Combined data structure for current time endpoint
type CurrentTimeData struct {
	Entry      CurrentTimeModel `json:"entry"`
	References ReferencesModel  `json:"references"`
}

// NewCurrentTimeData reports t in its own location along with whether routing treats it as
// rush hour.
func NewCurrentTimeData(t time.Time, rushHour bool) CurrentTimeData {
	return CurrentTimeData{
		Entry: CurrentTimeModel{
			ReadableTime: t.Format(time.RFC3339),
			Time:         t.UnixMilli(),
			Timezone:     t.Location().String(),
			RushHour:     rushHour,
		},
		References: NewEmptyReferences(),
	}
}
