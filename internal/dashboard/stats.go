// Package dashboard derives the console's headline metrics from a lead
// snapshot and holds the dashboard view's own copy of that snapshot.
package dashboard

import (
	"time"

	"github.com/ignite/lead-console/internal/domain"
)

const (
	// RecentCount is how many of the newest leads the dashboard lists.
	RecentCount = 7
	// SeriesDays is the length of the leads-over-time series.
	SeriesDays = 7
)

// ChartPoint is one bar or slice of a chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color,omitempty"`
}

// Stats is everything the dashboard renders.
type Stats struct {
	TotalToday   int           `json:"totalLeadsToday"`
	Total        int           `json:"totalLeads"`
	FromAds      int           `json:"leadsFromAds"`
	InClosing    int           `json:"leadsInClosing"`
	Recent       []domain.Lead `json:"recentLeads"`
	OverTime     []ChartPoint  `json:"leadsOverTime"`
	Distribution []ChartPoint  `json:"pipelineDistribution"`
}

// Compute aggregates leads, which must already be ordered newest first.
// A lead belongs to the day its stored timestamp starts with; "today" is the
// UTC date of now. The result depends only on its arguments.
func Compute(leads []domain.Lead, now time.Time) Stats {
	today := now.UTC()
	todayKey := today.Format(domain.DayLayout)

	perDay := make(map[string]int)
	perStage := make(map[domain.Stage]int)
	s := Stats{
		Total:        len(leads),
		Recent:       []domain.Lead{},
		Distribution: []ChartPoint{},
	}

	for _, l := range leads {
		day := l.CreatedDay()
		perDay[day]++
		if day == todayKey {
			s.TotalToday++
		}
		if l.FromAd {
			s.FromAds++
		}
		if l.Stage == domain.StageProposalSent {
			s.InClosing++
		}
		if l.Stage.Known() {
			perStage[l.Stage]++
		}
	}

	n := len(leads)
	if n > RecentCount {
		n = RecentCount
	}
	s.Recent = append(s.Recent, leads[:n]...)

	s.OverTime = make([]ChartPoint, 0, SeriesDays)
	for i := SeriesDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		s.OverTime = append(s.OverTime, ChartPoint{
			Name:  d.Format("02/01"),
			Value: perDay[d.Format(domain.DayLayout)],
		})
	}

	for _, st := range domain.Stages() {
		if c := perStage[st]; c > 0 {
			s.Distribution = append(s.Distribution, ChartPoint{Name: st.Title(), Value: c, Color: st.Color()})
		}
	}
	return s
}
