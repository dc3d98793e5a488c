// Package analytics aggregates study sessions and quiz results.
package analytics

import (
	"context"
	"sort"

	"github.com/kwararru/shell/internal/shared/types"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultWeakThreshold is the average score below which a subject is weak
	DefaultWeakThreshold = 70.0
	// WeakTopicWindow is how many recent quiz results weak topics consider
	WeakTopicWindow = 100
)

// Reader is the store surface analytics reads from
type Reader interface {
	ListSessions(ctx context.Context, limit int) ([]types.StudySession, error)
	ListQuizResults(ctx context.Context, limit int) ([]types.QuizResult, error)
}

// SubjectTime is total study minutes for a subject
type SubjectTime struct {
	Subject  string `json:"subject"`
	Minutes  int    `json:"minutes"`
	Sessions int    `json:"sessions"`
}

// TopicScore is the average quiz score for a subject
type TopicScore struct {
	Subject      string  `json:"subject"`
	AverageScore float64 `json:"average_score"`
	StdDev       float64 `json:"std_dev"`
	Quizzes      int     `json:"quizzes"`
}

// Summary is the dashboard view of a learner's history
type Summary struct {
	TotalMinutes   int                  `json:"total_minutes"`
	BySubject      []SubjectTime        `json:"by_subject"`
	WeakTopics     []TopicScore         `json:"weak_topics"`
	RecentQuizzes  []types.QuizResult   `json:"recent_quizzes"`
	RecentSessions []types.StudySession `json:"recent_sessions"`
}

// Service computes analytics from a Reader
type Service struct {
	reader    Reader
	threshold float64
}

// NewService creates a service with the default weak-topic threshold
func NewService(reader Reader) *Service {
	return &Service{reader: reader, threshold: DefaultWeakThreshold}
}

// WithThreshold overrides the weak-topic threshold
func (s *Service) WithThreshold(threshold float64) *Service {
	s.threshold = threshold
	return s
}

// TotalStudyTime sums the duration of every recorded session, in minutes
func (s *Service) TotalStudyTime(ctx context.Context) (int, error) {
	sessions, err := s.reader.ListSessions(ctx, 0)
	if err != nil {
		return 0, err
	}
	return TotalMinutes(sessions), nil
}

// WeakTopics returns subjects averaging below the threshold over the most
// recent quiz results, weakest first
func (s *Service) WeakTopics(ctx context.Context) ([]TopicScore, error) {
	results, err := s.reader.ListQuizResults(ctx, WeakTopicWindow)
	if err != nil {
		return nil, err
	}
	return WeakTopics(results, s.threshold), nil
}

// Summary gathers the dashboard figures in one pass over the store
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	sessions, err := s.reader.ListSessions(ctx, 0)
	if err != nil {
		return Summary{}, err
	}
	results, err := s.reader.ListQuizResults(ctx, WeakTopicWindow)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalMinutes:   TotalMinutes(sessions),
		BySubject:      StudyBySubject(sessions),
		WeakTopics:     WeakTopics(results, s.threshold),
		RecentQuizzes:  head(results, 7),
		RecentSessions: head(sessions, 50),
	}, nil
}

// TotalMinutes sums session durations
func TotalMinutes(sessions []types.StudySession) int {
	total := 0
	for _, sess := range sessions {
		total += sess.Duration
	}
	return total
}

// StudyBySubject totals minutes per subject, most studied first
func StudyBySubject(sessions []types.StudySession) []SubjectTime {
	bySubject := make(map[string]*SubjectTime)
	for _, sess := range sessions {
		st, ok := bySubject[sess.Subject]
		if !ok {
			st = &SubjectTime{Subject: sess.Subject}
			bySubject[sess.Subject] = st
		}
		st.Minutes += sess.Duration
		st.Sessions++
	}

	out := make([]SubjectTime, 0, len(bySubject))
	for _, st := range bySubject {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

// TopicScores averages quiz scores per subject
func TopicScores(results []types.QuizResult) []TopicScore {
	scores := make(map[string][]float64)
	var subjects []string
	for _, r := range results {
		if _, ok := scores[r.Subject]; !ok {
			subjects = append(subjects, r.Subject)
		}
		scores[r.Subject] = append(scores[r.Subject], float64(r.Score))
	}

	out := make([]TopicScore, 0, len(subjects))
	for _, subject := range subjects {
		xs := scores[subject]
		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) < 2 {
			std = 0
		}
		out = append(out, TopicScore{
			Subject:      subject,
			AverageScore: mean,
			StdDev:       std,
			Quizzes:      len(xs),
		})
	}
	return out
}

// WeakTopics keeps subjects averaging strictly below threshold, ascending
func WeakTopics(results []types.QuizResult, threshold float64) []TopicScore {
	var weak []TopicScore
	for _, ts := range TopicScores(results) {
		if ts.AverageScore < threshold {
			weak = append(weak, ts)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].AverageScore < weak[j].AverageScore
	})
	if weak == nil {
		weak = []TopicScore{}
	}
	return weak
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
