package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
)

const (
	strongSubjectCount = 3
	weakSubjectCount   = 3
	recentTestCount    = 5
	// RecommendationLimit caps recommended resources per performance view.
	RecommendationLimit = 3
)

type tally struct {
	correct int
	total   int
}

func (t tally) accuracy() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.correct) / float64(t.total) * 100
}

type categoryTally struct {
	overall tally
	bands   map[model.Difficulty]*tally
}

func round(v float64) int {
	return int(math.Round(v))
}

// BuildPerformance computes the analytics view of one student from their
// completed attempts. It is a pure function of its input: the same attempts
// always yield the same output. RecommendedResources is left empty for the
// caller to fill from WeakSubjects.
func BuildPerformance(name string, attempts []model.Attempt) *model.Performance {
	p := &model.Performance{
		Name:                 name,
		TimeSpent:            "0h 0m",
		RecentTests:          []model.RecentTest{},
		CategoryPerformance:  []model.CategoryScore{},
		CategoryDetails:      []model.CategoryDetail{},
		TopicBreakdown:       []model.NamedValue{},
		StrongSubjects:       []string{},
		WeakSubjects:         []string{},
		ImprovementAreas:     []model.ImprovementArea{},
		RecommendedResources: []model.ResourceSummary{},
		TimeAnalysis: model.TimeAnalysis{
			FastestCategory: "None",
			SlowestCategory: "None",
		},
	}
	p.AnswerDistribution = answerDistribution(0, 0, 0)
	if len(attempts) == 0 {
		return p
	}

	p.TestsAttempted = len(attempts)

	var scoreSum float64
	var totalElapsed float64
	for _, a := range attempts {
		scoreSum += a.Result.Score
		totalElapsed += elapsedSeconds(a.Result)
	}
	p.AverageScore = round(scoreSum / float64(len(attempts)))
	totalMinutes := int(totalElapsed / 60)
	p.TimeSpent = fmt.Sprintf("%dh %dm", totalMinutes/60, totalMinutes%60)
	p.RecentTests = recentTests(attempts)

	categories, correct, incorrect, unattempted := tallyAnswers(attempts)
	p.AnswerDistribution = answerDistribution(correct, incorrect, unattempted)

	details := categoryDetails(categories)
	p.CategoryDetails = details
	for _, d := range details {
		p.CategoryPerformance = append(p.CategoryPerformance, model.CategoryScore{Category: d.Category, Score: round(d.AvgScore)})
		p.TopicBreakdown = append(p.TopicBreakdown, model.NamedValue{Name: d.Category, Value: round(d.AvgScore)})
	}

	p.StrongSubjects, p.WeakSubjects = classifySubjects(p.CategoryPerformance)
	scoreOf := make(map[string]int, len(p.CategoryPerformance))
	for _, cs := range p.CategoryPerformance {
		scoreOf[cs.Category] = cs.Score
	}
	for _, topic := range p.WeakSubjects {
		p.ImprovementAreas = append(p.ImprovementAreas, model.ImprovementArea{
			Topic:       topic,
			Performance: scoreOf[topic],
			Tips:        fmt.Sprintf("Focus on improving your understanding of %s concepts.", topic),
		})
	}

	p.TimeAnalysis = timeAnalysis(attempts)
	return p
}

func elapsedSeconds(res model.TestResult) float64 {
	d := res.EndTime.Sub(res.StartTime).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

func recentTests(attempts []model.Attempt) []model.RecentTest {
	sorted := make([]model.Attempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Result.CreatedAt.After(sorted[j].Result.CreatedAt)
	})
	if len(sorted) > recentTestCount {
		sorted = sorted[:recentTestCount]
	}

	out := make([]model.RecentTest, len(sorted))
	for i, a := range sorted {
		name := "Unknown Test"
		if a.Test != nil {
			name = a.Test.Title
		}
		out[i] = model.RecentTest{
			ID:        a.Result.ID,
			Name:      name,
			Score:     a.Result.Score,
			Date:      a.Result.CreatedAt.UTC().Format("2006-01-02"),
			TimeSpent: fmt.Sprintf("%dm", round(elapsedSeconds(a.Result)/60)),
		}
	}
	return out
}

// matchAnswers pairs each answer with the question it belongs to. Answers
// are matched by id first; an answer whose id is unknown falls back to the
// question at its own position, but only when no answer claimed that
// question by id. Repeated answers to one question keep the first.
func matchAnswers(t *model.Test, answers []model.Answer) ([]model.Question, []model.Answer) {
	position := make(map[uuid.UUID]int, len(t.Questions))
	for i, q := range t.Questions {
		position[q.ID] = i
	}

	claimed := make([]int, len(t.Questions))
	for i := range claimed {
		claimed[i] = -1
	}
	for i, ans := range answers {
		if p, ok := position[ans.QuestionID]; ok && claimed[p] < 0 {
			claimed[p] = i
		}
	}
	for i, ans := range answers {
		if _, ok := position[ans.QuestionID]; ok {
			continue
		}
		if i < len(claimed) && claimed[i] < 0 {
			claimed[i] = i
		}
	}

	var questions []model.Question
	var matched []model.Answer
	for p, i := range claimed {
		if i < 0 {
			continue
		}
		questions = append(questions, t.Questions[p])
		matched = append(matched, answers[i])
	}
	return questions, matched
}

// tallyAnswers counts matched answers per category and difficulty band.
// Questions of an attempted test with no answer count as unattempted.
func tallyAnswers(attempts []model.Attempt) (map[string]*categoryTally, int, int, int) {
	categories := make(map[string]*categoryTally)
	var correct, incorrect, unattempted int

	for _, a := range attempts {
		if a.Test == nil {
			continue
		}
		questions, answers := matchAnswers(a.Test, a.Result.Answers)
		for i, q := range questions {
			ct := categories[q.Category]
			if ct == nil {
				ct = &categoryTally{bands: make(map[model.Difficulty]*tally)}
				categories[q.Category] = ct
			}
			band := ct.bands[q.Difficulty]
			if band == nil {
				band = &tally{}
				ct.bands[q.Difficulty] = band
			}

			ct.overall.total++
			band.total++
			if answers[i].IsCorrect {
				ct.overall.correct++
				band.correct++
				correct++
			} else {
				incorrect++
			}
		}
		unattempted += len(a.Test.Questions) - len(questions)
	}
	return categories, correct, incorrect, unattempted
}

func answerDistribution(correct, incorrect, unattempted int) []model.NamedValue {
	return []model.NamedValue{
		{Name: "Correct Answers", Value: correct},
		{Name: "Incorrect Answers", Value: incorrect},
		{Name: "Unattempted", Value: unattempted},
	}
}

// categoryDetails sorts categories by accuracy descending, then by name.
func categoryDetails(categories map[string]*categoryTally) []model.CategoryDetail {
	out := make([]model.CategoryDetail, 0, len(categories))
	for name, ct := range categories {
		band := func(d model.Difficulty) float64 {
			if t := ct.bands[d]; t != nil {
				return t.accuracy()
			}
			return 0
		}
		out = append(out, model.CategoryDetail{
			Category:       name,
			AvgScore:       ct.overall.accuracy(),
			TotalQuestions: ct.overall.total,
			CorrectAnswers: ct.overall.correct,
			DifficultyBreakdown: model.DifficultyBreakdown{
				Easy:   band(model.DifficultyEasy),
				Medium: band(model.DifficultyMedium),
				Hard:   band(model.DifficultyHard),
			},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// classifySubjects splits categories by rounded accuracy. Strong subjects are
// the top categories at 100, backfilled with the next best. Weak subjects are
// the lowest categories below 100, empty when every category is at 100.
func classifySubjects(scores []model.CategoryScore) (strong, weak []string) {
	sorted := make([]model.CategoryScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Category < sorted[j].Category
	})

	strong = []string{}
	var below []model.CategoryScore
	for _, cs := range sorted {
		if cs.Score >= 100 {
			if len(strong) < strongSubjectCount {
				strong = append(strong, cs.Category)
			}
		} else {
			below = append(below, cs)
		}
	}
	for _, cs := range below {
		if len(strong) >= strongSubjectCount {
			break
		}
		strong = append(strong, cs.Category)
	}

	weak = []string{}
	start := len(below) - weakSubjectCount
	if start < 0 {
		start = 0
	}
	for _, cs := range below[start:] {
		weak = append(weak, cs.Category)
	}
	return strong, weak
}

// timeAnalysis spreads each attempt's elapsed time evenly over its test's
// questions. Per-difficulty values weight the global average by each band's
// share of questions; per-category values sum the per-question average of
// every question in that category.
func timeAnalysis(attempts []model.Attempt) model.TimeAnalysis {
	ta := model.TimeAnalysis{FastestCategory: "None", SlowestCategory: "None"}

	var totalTime float64
	var totalQuestions int
	bandCount := make(map[model.Difficulty]int)
	byCategory := make(map[string]float64)
	counted := false

	for _, a := range attempts {
		if a.Test == nil || len(a.Test.Questions) == 0 {
			continue
		}
		counted = true
		elapsed := elapsedSeconds(a.Result)
		n := len(a.Test.Questions)
		perQuestion := elapsed / float64(n)

		totalTime += elapsed
		totalQuestions += n
		for _, q := range a.Test.Questions {
			bandCount[q.Difficulty]++
			byCategory[q.Category] += perQuestion
		}
	}
	if !counted {
		return ta
	}

	avg := totalTime / float64(totalQuestions)
	ta.AverageTimePerQuestion = avg
	share := func(d model.Difficulty) float64 {
		return float64(bandCount[d]) / float64(totalQuestions) * avg
	}
	ta.TimeByDifficulty = model.DifficultyBreakdown{
		Easy:   share(model.DifficultyEasy),
		Medium: share(model.DifficultyMedium),
		Hard:   share(model.DifficultyHard),
	}

	if len(byCategory) == 0 {
		ta.FastestCategory, ta.SlowestCategory = "N/A", "N/A"
		return ta
	}
	ta.TimeByCategory = byCategory

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if byCategory[names[i]] != byCategory[names[j]] {
			return byCategory[names[i]] < byCategory[names[j]]
		}
		return names[i] < names[j]
	})
	ta.FastestCategory = names[0]
	ta.SlowestCategory = names[len(names)-1]
	return ta
}
