package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/advisory"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/geo"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/visa"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// Aggregator fans a task-generation request out to the visa, vaccine and
// generative agents, absorbs their failures, and merges whatever came
// back into one ordered task list.
type Aggregator struct {
	resolver *geo.Resolver
	visa     visa.Client
	advisory advisory.Client
	provider models.GenerativeProvider

	// branchTimeout bounds each agent branch independently; one slow
	// agent never starves the rest of the merge.
	branchTimeout time.Duration
}

func NewAggregator(resolver *geo.Resolver, visaClient visa.Client, advisoryClient advisory.Client, provider models.GenerativeProvider, branchTimeout time.Duration) *Aggregator {
	return &Aggregator{
		resolver:      resolver,
		visa:          visaClient,
		advisory:      advisoryClient,
		provider:      provider,
		branchTimeout: branchTimeout,
	}
}

// Aggregate produces the merged task list for a trip. It never returns an
// error: every agent failure degrades to fallback or synthesized tasks,
// so the caller always gets a non-empty, ordered result.
func (a *Aggregator) Aggregate(ctx context.Context, trip *models.Trip, citizenship string) []models.Task {
	passportCode := a.resolvePassport(ctx, citizenship)
	resolved := a.resolveDestinations(ctx, trip.Destinations)

	var (
		wg            sync.WaitGroup
		visaOut       []models.Task
		vaccineOut    []models.Task
		generativeOut []models.Task
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		bctx, cancel := context.WithTimeout(ctx, a.branchTimeout)
		defer cancel()
		visaOut = visaTasks(bctx, a.visa, trip.ID, passportCode, resolved)
	}()
	go func() {
		defer wg.Done()
		bctx, cancel := context.WithTimeout(ctx, a.branchTimeout)
		defer cancel()
		vaccineOut = a.vaccineTasks(bctx, trip)
	}()
	go func() {
		defer wg.Done()
		bctx, cancel := context.WithTimeout(ctx, a.branchTimeout)
		defer cancel()
		generativeOut = a.generativeTasks(bctx, trip)
	}()
	wg.Wait()

	return a.merge(trip, visaOut, vaccineOut, generativeOut)
}

func (a *Aggregator) resolvePassport(ctx context.Context, citizenship string) string {
	code, via, err := a.resolver.Resolve(ctx, citizenship)
	if err != nil {
		slog.Warn("could not resolve citizenship, visa checks degraded",
			"citizenship", citizenship, "error", err)
		return ""
	}
	slog.Debug("resolved citizenship", "citizenship", citizenship, "code", code, "via", via)
	return code
}

// resolveDestinations maps each destination to a country code, keeping
// trip order. Unresolvable destinations are skipped individually rather
// than failing the whole batch.
func (a *Aggregator) resolveDestinations(ctx context.Context, destinations []string) []resolvedDestination {
	var resolved []resolvedDestination
	for _, d := range destinations {
		code, _, err := a.resolver.Resolve(ctx, d)
		if err != nil {
			slog.Warn("could not resolve destination, skipping visa check",
				"destination", d, "error", err)
			continue
		}
		resolved = append(resolved, resolvedDestination{Name: d, Code: code})
	}
	return resolved
}

func (a *Aggregator) vaccineTasks(ctx context.Context, trip *models.Trip) []models.Task {
	travelDate := ""
	if !trip.StartDate.IsZero() {
		travelDate = trip.StartDate.Format("2006-01-02")
	}
	text, err := a.advisory.Research(ctx, trip.Destinations, travelDate)
	if err != nil {
		slog.Warn("health research unavailable", "error", err)
		return nil
	}
	return vaccineTasksFromResearch(text, trip.ID, trip.Destinations)
}

func (a *Aggregator) generativeTasks(ctx context.Context, trip *models.Trip) []models.Task {
	tasks, err := a.provider.SuggestTasks(ctx, trip)
	if err != nil {
		slog.Warn("generative task suggestions unavailable",
			"provider", a.provider.Name(), "error", err)
		return nil
	}
	return tasks
}

// merge combines the three candidate sets. Specialized agents own their
// categories: when the visa agent produced anything, generative visa
// candidates are dropped, and likewise for health. Remaining duplicates
// are removed by normalized title, gaps in the visa and health categories
// are filled with synthesized research tasks, and the result is ordered
// by priority, then source precedence, then arrival order.
func (a *Aggregator) merge(trip *models.Trip, visaOut, vaccineOut, generativeOut []models.Task) []models.Task {
	haveVisa := len(visaOut) > 0
	haveHealth := len(vaccineOut) > 0

	candidates := make([]models.Task, 0, len(visaOut)+len(vaccineOut)+len(generativeOut))
	candidates = append(candidates, visaOut...)
	candidates = append(candidates, vaccineOut...)
	for _, t := range generativeOut {
		if haveVisa && t.Category == models.CategoryVisa {
			continue
		}
		if haveHealth && t.Category == models.CategoryHealth {
			continue
		}
		candidates = append(candidates, t)
	}

	seen := make(map[string]bool, len(candidates))
	merged := candidates[:0]
	for _, t := range candidates {
		fp := titleFingerprint(t.Title)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		merged = append(merged, t)
	}

	merged = append(merged, a.fillCategoryGaps(trip, merged, seen, haveVisa, haveHealth)...)

	sort.SliceStable(merged, func(i, j int) bool {
		pi, pj := models.PriorityRank(merged[i].Priority), models.PriorityRank(merged[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return models.SourceRank(merged[i].Source) < models.SourceRank(merged[j].Source)
	})
	return merged
}

// fillCategoryGaps synthesizes per-destination research tasks for the
// visa and health categories, but only when the concern is truly silent:
// the category has no candidates and its specialized agent produced
// nothing at all. A visa-free answer yields documentation tasks rather
// than visa ones, and that is an authoritative answer, not a gap.
func (a *Aggregator) fillCategoryGaps(trip *models.Trip, merged []models.Task, seen map[string]bool, visaAnswered, healthAnswered bool) []models.Task {
	var hasVisa, hasHealth bool
	for _, t := range merged {
		switch t.Category {
		case models.CategoryVisa:
			hasVisa = true
		case models.CategoryHealth:
			hasHealth = true
		}
	}

	var filled []models.Task
	add := func(t models.Task) {
		fp := titleFingerprint(t.Title)
		if seen[fp] {
			return
		}
		seen[fp] = true
		filled = append(filled, t)
	}

	if !hasVisa && !visaAnswered {
		for _, d := range trip.Destinations {
			add(fallbackVisaTask(trip.ID, d))
		}
	}
	if !hasHealth && !healthAnswered {
		for _, d := range trip.Destinations {
			add(fallbackHealthTask(trip.ID, d))
		}
	}
	return filled
}

func fallbackHealthTask(tripID uuid.UUID, destination string) models.Task {
	desc := fmt.Sprintf("Check recommended and required vaccinations for %s. "+
		"Consult a travel clinic or official health advisory (CDC, WHO). "+
		"Recommended: 4-6 weeks before trip.", destination)
	now := time.Now().UTC()
	return models.Task{
		ID:           uuid.New(),
		TripID:       tripID,
		Title:        fmt.Sprintf("Research vaccination requirements for %s", destination),
		Description:  &desc,
		Category:     models.CategoryHealth,
		Priority:     models.PriorityHigh,
		Destinations: []string{destination},
		Source:       models.SourceVaccineAgent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// titleFingerprint normalizes a title for duplicate detection: lowercase,
// alphanumerics only, single spaces.
func titleFingerprint(title string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
