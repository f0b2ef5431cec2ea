package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is a completed result joined with its parent test. Test is nil
// when the parent no longer exists.
type Attempt struct {
	Result TestResult
	Test   *Test
}

// DifficultyBreakdown holds one value per question difficulty band.
type DifficultyBreakdown struct {
	Easy   float64 `json:"easy"`
	Medium float64 `json:"medium"`
	Hard   float64 `json:"hard"`
}

// CategoryScore is a rounded accuracy per category.
type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// CategoryDetail is the full accuracy breakdown of one category.
type CategoryDetail struct {
	Category            string              `json:"category"`
	AvgScore            float64             `json:"avg_score"`
	TotalQuestions      int                 `json:"total_questions"`
	CorrectAnswers      int                 `json:"correct_answers"`
	DifficultyBreakdown DifficultyBreakdown `json:"difficulty_breakdown"`
}

// NamedValue is a chart-ready pair.
type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// RecentTest summarizes one of the latest attempts.
type RecentTest struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Date      string    `json:"date"`
	TimeSpent string    `json:"time_spent"`
}

// ImprovementArea is advice for a weak subject.
type ImprovementArea struct {
	Topic       string `json:"topic"`
	Performance int    `json:"performance"`
	Tips        string `json:"tips"`
}

// TimeAnalysis holds time-per-question statistics in seconds.
type TimeAnalysis struct {
	AverageTimePerQuestion float64             `json:"average_time_per_question"`
	FastestCategory        string              `json:"fastest_category"`
	SlowestCategory        string              `json:"slowest_category"`
	TimeByDifficulty       DifficultyBreakdown `json:"time_by_difficulty"`
	TimeByCategory         map[string]float64  `json:"time_by_category,omitempty"`
}

// Performance is the full analytics view of one student.
type Performance struct {
	Name                 string            `json:"name"`
	TestsAttempted       int               `json:"tests_attempted"`
	AverageScore         int               `json:"average_score"`
	TimeSpent            string            `json:"time_spent"`
	RecentTests          []RecentTest      `json:"recent_tests"`
	CategoryPerformance  []CategoryScore   `json:"category_performance"`
	CategoryDetails      []CategoryDetail  `json:"category_details"`
	TopicBreakdown       []NamedValue      `json:"topic_breakdown"`
	AnswerDistribution   []NamedValue      `json:"answer_distribution"`
	StrongSubjects       []string          `json:"strong_subjects"`
	WeakSubjects         []string          `json:"weak_subjects"`
	ImprovementAreas     []ImprovementArea `json:"improvement_areas"`
	TimeAnalysis         TimeAnalysis      `json:"time_analysis"`
	RecommendedResources []ResourceSummary `json:"recommended_resources"`
}

// ─── Admin analytics ────────────────────────────────────────────────

// StudentCategoryScore is a student's mean result score per test category.
type StudentCategoryScore struct {
	Category     string `json:"category"`
	AverageScore int    `json:"average_score"`
}

// StudentSummary is one row of the admin student list.
type StudentSummary struct {
	ID                  uuid.UUID              `json:"id"`
	Name                string                 `json:"name"`
	Email               string                 `json:"email"`
	TestsTaken          int                    `json:"tests_taken"`
	AverageScore        int                    `json:"average_score"`
	LastActive          time.Time              `json:"last_active"`
	CategoryPerformance []StudentCategoryScore `json:"category_performance"`
}

// StudentScoreRow is one result of a student, tagged with the category of
// its test's first question. Used to build StudentSummary.
type StudentScoreRow struct {
	StudentID uuid.UUID
	Score     float64
	Category  string
	CreatedAt time.Time
}

// AdminStats is the admin overview.
type AdminStats struct {
	TotalStudents  int            `json:"total_students"`
	TotalTests     int            `json:"total_tests"`
	AverageScore   int            `json:"average_score"`
	ActiveStudents int            `json:"active_students"`
	CategoryStats  map[string]int `json:"category_stats"`
}

// RoleStats counts accounts of one role.
type RoleStats struct {
	Role     Role `json:"role"`
	Count    int  `json:"count"`
	Active   int  `json:"active"`
	Inactive int  `json:"inactive"`
}

// LevelStats summarizes attempted tests of one difficulty level.
type LevelStats struct {
	Difficulty      Level   `json:"difficulty"`
	TestCount       int     `json:"test_count"`
	TotalAttempts   int     `json:"total_attempts"`
	AttemptsPerTest float64 `json:"attempts_per_test"`
	AvgScore        float64 `json:"avg_score"`
}

// ResourceTypeStats summarizes resources of one type.
type ResourceTypeStats struct {
	Type       ResourceType `json:"type"`
	Count      int          `json:"count"`
	AvgViews   float64      `json:"avg_views"`
	TotalViews int          `json:"total_views"`
}

// DashboardStats is the multi-dimensional admin dashboard.
type DashboardStats struct {
	Users     []RoleStats         `json:"users"`
	Tests     []LevelStats        `json:"tests"`
	Resources []ResourceTypeStats `json:"resources"`
}

// HeatmapCell is the attempt count of one weekday/hour slot.
type HeatmapCell struct {
	Day          int `json:"day"`
	Hour         int `json:"hour"`
	Count        int `json:"count"`
	StudentCount int `json:"student_count"`
}

// ActivityHeatmap is a 7x24 matrix (day 0 = Sunday, UTC hours) plus the
// non-empty cells it was built from.
type ActivityHeatmap struct {
	Heatmap [7][24]int    `json:"heatmap"`
	Raw     []HeatmapCell `json:"raw"`
}
