package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolve"
	"toggl-mcp/internal/timeconv"
)

const (
	contextWindowDays = 7
	topN              = 5
)

// ProjectStat is the tracked time for one project within the window.
type ProjectStat struct {
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name,omitempty"`
	Seconds   int64  `json:"seconds"`
	Hours     string `json:"hours"`
	Count     int    `json:"entry_count"`
}

// TagStat counts how many entries carry a tag.
type TagStat struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// WorkContext summarises recent activity.
type WorkContext struct {
	Window               domain.DateRange      `json:"window"`
	Current              *domain.TimeEntry     `json:"current_entry"`
	EntryCount           int                   `json:"entry_count"`
	TotalSeconds         int64                 `json:"total_seconds"`
	TotalHours           string                `json:"total_hours"`
	TopProjects          []ProjectStat         `json:"top_projects"`
	TopTags              []TagStat             `json:"top_tags"`
	DistinctDescriptions int                   `json:"distinct_descriptions"`
	Narrative            []string              `json:"narrative"`
	Timezone             timeconv.TimezoneInfo `json:"timezone_info"`
}

func hours(sec int64) string {
	return fmt.Sprintf("%.1f", float64(sec)/3600)
}

// Summarize aggregates entries. Running entries count toward project and tag
// tallies but add nothing to tracked seconds. names maps project ids to
// display names and may be nil. Ties keep encounter order.
func Summarize(entries []domain.TimeEntry, current *domain.TimeEntry, names map[int64]string) WorkContext {
	wc := WorkContext{
		Current:     current,
		EntryCount:  len(entries),
		TopProjects: []ProjectStat{},
		TopTags:     []TagStat{},
		Narrative:   []string{},
	}

	var projects []ProjectStat
	var tags []TagStat
	projectIdx := map[int64]int{}
	tagIdx := map[string]int{}
	descs := map[string]struct{}{}
	for _, e := range entries {
		var secs int64
		if e.Duration != nil && *e.Duration > 0 {
			secs = *e.Duration
		}
		wc.TotalSeconds += secs

		if e.ProjectID != nil {
			i, ok := projectIdx[*e.ProjectID]
			if !ok {
				i = len(projects)
				projectIdx[*e.ProjectID] = i
				projects = append(projects, ProjectStat{ProjectID: *e.ProjectID, Name: names[*e.ProjectID]})
			}
			projects[i].Seconds += secs
			projects[i].Count++
		}
		for _, t := range e.Tags {
			i, ok := tagIdx[t]
			if !ok {
				i = len(tags)
				tagIdx[t] = i
				tags = append(tags, TagStat{Tag: t})
			}
			tags[i].Count++
		}
		if e.Description != "" {
			descs[e.Description] = struct{}{}
		}
	}

	sort.SliceStable(projects, func(i, j int) bool { return projects[i].Seconds > projects[j].Seconds })
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })
	for i := range projects {
		projects[i].Hours = hours(projects[i].Seconds)
	}
	if len(projects) > topN {
		projects = projects[:topN]
	}
	if len(tags) > topN {
		tags = tags[:topN]
	}
	if projects != nil {
		wc.TopProjects = projects
	}
	if tags != nil {
		wc.TopTags = tags
	}
	wc.TotalHours = hours(wc.TotalSeconds)
	wc.DistinctDescriptions = len(descs)
	wc.Narrative = narrate(wc, names)
	return wc
}

func narrate(wc WorkContext, names map[int64]string) []string {
	var out []string
	if c := wc.Current; c != nil {
		what := c.Description
		if what == "" {
			what = "an entry without description"
		} else {
			what = fmt.Sprintf("%q", what)
		}
		s := "Currently tracking " + what
		if c.ProjectID != nil && names[*c.ProjectID] != "" {
			s += " on " + names[*c.ProjectID]
		}
		if c.StartLocal != "" {
			s += " since " + c.StartLocal
		}
		out = append(out, s+".")
	} else {
		out = append(out, "No timer is currently running.")
	}

	out = append(out, fmt.Sprintf("Tracked %s hours across %d entries in the last %d days.",
		wc.TotalHours, wc.EntryCount, contextWindowDays))

	if len(wc.TopProjects) > 0 {
		p := wc.TopProjects[0]
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("project %d", p.ProjectID)
		}
		out = append(out, fmt.Sprintf("Most time went to %s (%s hours over %d entries).", name, p.Hours, p.Count))
	}
	if len(wc.TopTags) > 0 {
		out = append(out, fmt.Sprintf("The most used tag is %q (%d entries).", wc.TopTags[0].Tag, wc.TopTags[0].Count))
	}
	return out
}

// WorkContextUseCase gathers the trailing week of entries and the running
// timer and summarises them.
type WorkContextUseCase struct {
	Log      *slog.Logger
	Toggl    ports.TogglClient
	Query    *QueryEngine
	Resolver *resolve.Resolver
	Conv     *timeconv.Converter
}

func (uc *WorkContextUseCase) Run(ctx context.Context) (WorkContext, error) {
	if uc.Toggl == nil || uc.Query == nil || uc.Conv == nil {
		return WorkContext{}, errors.New("usecase not initialized: missing dependencies")
	}
	window := uc.Conv.Span(-(contextWindowDays - 1), 0)
	entries, err := uc.Query.EntriesInRange(ctx, window)
	if err != nil {
		return WorkContext{}, err
	}
	current, err := uc.Toggl.CurrentTimeEntry(ctx)
	if err != nil {
		return WorkContext{}, err
	}
	if current != nil {
		enriched := uc.Conv.Enrich(*current)
		current = &enriched
	}

	wc := Summarize(entries, current, uc.projectNames(ctx, entries, current))
	wc.Window = window
	wc.Timezone = uc.Conv.Info()
	uc.Log.Info("work context built", slog.Int("entries", wc.EntryCount), slog.Int64("total_seconds", wc.TotalSeconds))
	return wc, nil
}

// projectNames looks up names for the workspaces the entries belong to.
// Lookup failures only cost the names, never the summary.
func (uc *WorkContextUseCase) projectNames(ctx context.Context, entries []domain.TimeEntry, current *domain.TimeEntry) map[int64]string {
	names := map[int64]string{}
	if uc.Resolver == nil {
		return names
	}
	seen := map[int64]bool{}
	all := entries
	if current != nil {
		all = append(append([]domain.TimeEntry{}, entries...), *current)
	}
	for _, e := range all {
		if e.ProjectID == nil || e.WorkspaceID == 0 || seen[e.WorkspaceID] {
			continue
		}
		seen[e.WorkspaceID] = true
		projects, err := uc.Resolver.AllProjects(ctx, e.WorkspaceID, 0, false)
		if err != nil {
			uc.Log.Warn("project names unavailable", slog.Int64("workspace_id", e.WorkspaceID), slog.Any("err", err))
			continue
		}
		for _, p := range projects {
			names[p.ID] = p.Name
		}
	}
	return names
}
