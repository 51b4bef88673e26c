package dashboard

import (
	"strings"

	"github.com/samber/lo"
	"github.com/tasukuchiba/ed_monitor/internal/models"
)

const (
	DefaultPageLimit     = 50
	MaxPageLimit         = 100
	MaxActivityLimit     = 100
	DefaultActivityQuery = 20
)

// CaseFilter は症例一覧の絞り込み条件
//
// ゼロ値の項目は条件に含めない。
type CaseFilter struct {
	Type     models.CaseType
	Status   models.CaseStatus
	Priority int
	Page     int
	Limit    int
}

// Cases は条件に一致する症例を新しい順に返す
//
// limitは1から100の範囲に丸められる。範囲外のページは空になる。
func (s *Service) Cases(f CaseFilter) ([]models.PatientCase, error) {
	cases, err := s.store.ListCases()
	if err != nil {
		return nil, err
	}

	cases = lo.Filter(cases, func(c models.PatientCase, _ int) bool {
		if f.Type != "" && !strings.EqualFold(string(c.Type), string(f.Type)) {
			return false
		}
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		if f.Priority != 0 && c.Priority != f.Priority {
			return false
		}
		return true
	})

	page := max(f.Page, 1)
	limit := clampLimit(f.Limit, DefaultPageLimit, MaxPageLimit)
	if pages := (len(cases) + limit - 1) / limit; page > pages {
		return []models.PatientCase{}, nil
	}
	start := (page - 1) * limit
	return lo.Slice(cases, start, start+limit), nil
}

// Case は指定されたIDの症例を返す
func (s *Service) Case(id string) (models.PatientCase, error) {
	return s.store.GetCase(id)
}

// Activities は種別で絞り込んだアクティビティを新しい順に最大limit件返す
//
// limitは1から100の範囲に丸められる。
func (s *Service) Activities(activityType string, limit int) ([]models.ActivityEntry, error) {
	activities, err := s.store.ListActivities()
	if err != nil {
		return nil, err
	}

	if activityType != "" {
		activities = lo.Filter(activities, func(a models.ActivityEntry, _ int) bool {
			return strings.EqualFold(string(a.Type), activityType)
		})
	}

	return lo.Slice(activities, 0, clampLimit(limit, DefaultActivityQuery, MaxActivityLimit)), nil
}

// Messages はチャット履歴の末尾から最大limit件を古い順に返す。limitが0以下なら全件
func (s *Service) Messages(limit int) ([]models.ChatMessage, error) {
	messages, err := s.store.ListMessages()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return messages, nil
	}
	return lo.Subset(messages, -limit, uint(limit)), nil
}

// Metrics は現在のメトリクスを返す
func (s *Service) Metrics() (models.DashboardMetrics, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return models.DashboardMetrics{}, err
	}
	return snap.Metrics, nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
