package domain

import "encoding/json"

type WeeklyDataPoint struct {
	Date      Date   `json:"date"`
	Day       string `json:"day"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Rate      int    `json:"rate"`
}

type HeatmapPoint struct {
	Date      Date    `json:"date"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Intensity float64 `json:"intensity"`
}

type CategoryStat struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Rate     int      `json:"rate"`
}

type ProgressionPoint struct {
	Date Date `json:"date"`
	Rate int  `json:"rate"`
}

type Analytics struct {
	CategoryStats []CategoryStat     `json:"categoryStats"`
	Progression   []ProgressionPoint `json:"progression"`
	BestDay       string             `json:"bestDay"`
}

type DashboardStats struct {
	TotalHabits           int               `json:"totalHabits"`
	CurrentStreak         int               `json:"currentStreak"`
	LongestStreak         int               `json:"longestStreak"`
	OverallCompletionRate int               `json:"overallCompletionRate"`
	WeeklyData            []WeeklyDataPoint `json:"weeklyData"`
	Heatmap               []HeatmapPoint    `json:"heatmap"`
}

type HabitStats struct {
	CurrentStreak    int `json:"currentStreak"`
	LongestStreak    int `json:"longestStreak"`
	TotalCompletions int `json:"totalCompletions"`
	CompletionRate   int `json:"completionRate"`
	DaysSinceCreated int `json:"daysSinceCreated"`
}

type WeekRange struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
}

type BestHabit struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Completions int    `json:"completions"`
	Streak      int    `json:"streak"`
	Color       string `json:"color"`
}

type PerfectHabit struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

type AttentionHabit struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	MissedDays  int    `json:"missedDays"`
	Completions int    `json:"completions"`
	Color       string `json:"color"`
}

type WeeklyReview struct {
	HasHabits            bool             `json:"hasHabits"`
	WeekRange            WeekRange        `json:"weekRange"`
	CompletionRate       int              `json:"completionRate"`
	TotalHabits          int              `json:"totalHabits"`
	TotalCompletions     int              `json:"totalCompletions"`
	BestHabit            *BestHabit       `json:"bestHabit"`
	PerfectHabits        []PerfectHabit   `json:"perfectHabits"`
	NeedsAttentionHabits []AttentionHabit `json:"needsAttentionHabits"`
}

// MarshalJSON emits only hasHabits for a user without habits.
func (r WeeklyReview) MarshalJSON() ([]byte, error) {
	if !r.HasHabits {
		return []byte(`{"hasHabits":false}`), nil
	}
	type plain WeeklyReview
	return json.Marshal(plain(r))
}
