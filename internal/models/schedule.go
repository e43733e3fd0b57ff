package models

// SchedulePreset is a selectable review frequency.
type SchedulePreset struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
}

var schedulePresets = []SchedulePreset{
	{Days: 0, Label: "No automatic review date"},
	{Days: 1, Label: "1 day"},
	{Days: 7, Label: "1 week"},
	{Days: 30, Label: "1 month"},
	{Days: 60, Label: "2 months"},
	{Days: 91, Label: "3 months"},
	{Days: 121, Label: "4 months"},
	{Days: 152, Label: "5 months"},
	{Days: 183, Label: "6 months"},
	{Days: 365, Label: "12 months"},
}

// SchedulePresets lists the review frequencies offered to editors.
func SchedulePresets() []SchedulePreset {
	out := make([]SchedulePreset, len(schedulePresets))
	copy(out, schedulePresets)
	return out
}

// ScheduleLabel returns the label for days, falling back to the "no schedule" label.
func ScheduleLabel(days int) string {
	for _, preset := range schedulePresets {
		if preset.Days == days {
			return preset.Label
		}
	}
	return schedulePresets[0].Label
}

// IsSchedulePreset reports whether days matches a known preset.
func IsSchedulePreset(days int) bool {
	for _, preset := range schedulePresets {
		if preset.Days == days {
			return true
		}
	}
	return false
}
