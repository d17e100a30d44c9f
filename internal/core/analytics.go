package core

import (
	"context"
	"sort"

	"annexcore/pkg/domain"
)

// NamedCount is one bar of a categorical chart.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthlyCount is one point of the user registration series.
type MonthlyCount struct {
	Month string `json:"month"`
	Users int    `json:"users"`
}

// Analytics summarises the dashboard charts.
type Analytics struct {
	TotalUsers           int            `json:"total_users"`
	TotalAnnexes         int            `json:"total_annexes"`
	TotalAnnouncements   int            `json:"total_announcements"`
	AnnexStatus          []NamedCount   `json:"annex_status"`
	AnnexesPerUniversity []NamedCount   `json:"annexes_per_university"`
	AnnexesPerDistrict   []NamedCount   `json:"annexes_per_district"`
	MonthlyNewUsers      []MonthlyCount `json:"monthly_new_users"`
}

// Analytics computes the dashboard statistics from a consistent view of the
// store. Per-university and per-district series are ordered by descending
// count then name and truncated to topN entries when topN is positive.
// Annexes without a resolvable university are left out of both series.
func (s *Service) Analytics(ctx context.Context, topN int) (Analytics, error) {
	var out Analytics
	err := s.observe(ctx, "analytics", func(ctx context.Context) error {
		return s.store.View(ctx, func(view TransactionView) error {
			out = computeAnalytics(view, topN)
			return nil
		})
	}, nil)
	if err != nil {
		return Analytics{}, err
	}
	return out, nil
}

func computeAnalytics(view TransactionView, topN int) Analytics {
	users := view.ListUsers()
	annexes := view.ListAnnexes()
	out := Analytics{
		TotalUsers:         len(users),
		TotalAnnexes:       len(annexes),
		TotalAnnouncements: len(view.ListAnnouncements()),
	}

	byStatus := make(map[domain.AnnexStatus]int)
	byUniversity := make(map[string]int)
	byDistrict := make(map[string]int)
	for _, a := range annexes {
		byStatus[a.Status]++
		if a.UniversityID == nil {
			continue
		}
		u, ok := view.FindUniversity(*a.UniversityID)
		if !ok {
			continue
		}
		byUniversity[u.Name]++
		if d, ok := view.FindDistrict(u.DistrictID); ok {
			byDistrict[d.Name]++
		}
	}
	for _, status := range domain.AnnexStatuses() {
		out.AnnexStatus = append(out.AnnexStatus, NamedCount{Name: string(status), Count: byStatus[status]})
	}
	out.AnnexesPerUniversity = rankCounts(byUniversity, topN)
	out.AnnexesPerDistrict = rankCounts(byDistrict, topN)

	monthly := make(map[string]int)
	for _, u := range users {
		if u.RegisteredAt.IsZero() {
			continue
		}
		monthly[u.RegisteredAt.UTC().Format("2006-01")]++
	}
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	out.MonthlyNewUsers = make([]MonthlyCount, 0, len(months))
	for _, m := range months {
		out.MonthlyNewUsers = append(out.MonthlyNewUsers, MonthlyCount{Month: m, Users: monthly[m]})
	}
	return out
}

func rankCounts(counts map[string]int, topN int) []NamedCount {
	out := make([]NamedCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, NamedCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
