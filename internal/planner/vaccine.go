package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// vaccineNames are the vaccines we look for in research text. Matching is
// case-insensitive; the canonical spelling here is what ends up in task
// titles.
var vaccineNames = []string{
	"Yellow Fever",
	"Typhoid",
	"Hepatitis A",
	"Hepatitis B",
	"Rabies",
	"Japanese Encephalitis",
	"Malaria",
	"Tetanus",
	"Diphtheria",
	"Measles",
	"Mumps",
	"Rubella",
	"Polio",
	"COVID-19",
	"Cholera",
	"Meningococcal",
	"Tuberculosis",
	"Influenza",
}

// requirementWords mark a vaccine as mandatory rather than merely
// recommended when any of them appears shortly after the mention.
var requirementWords = []string{"required", "mandatory", "must", "compulsory", "obligatory"}

const (
	// requirementWindow is how far past a vaccine mention we scan for a
	// requirement word.
	requirementWindow = 200
	// destinationWindow is how far around a mention we scan for a
	// destination name when attributing the vaccine to specific countries.
	destinationWindow = 500
	// contextLimit caps the snippet pulled from the research text.
	contextLimit = 300
)

// vaccineTasksFromResearch scans free-form health research text and emits
// one task per vaccine that the text marks as required. Recommended-only
// vaccines are dropped: the generative agent covers general health advice,
// this path exists for hard entry requirements.
func vaccineTasksFromResearch(text string, tripID uuid.UUID, destinations []string) []models.Task {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var tasks []models.Task
	for _, name := range vaccineNames {
		idx := strings.Index(lower, strings.ToLower(name))
		if idx < 0 {
			continue
		}
		if !requiredNearby(lower, idx+len(name)) {
			continue
		}

		covered := attributeDestinations(lower, idx, destinations)
		snippet := contextAround(text, idx)
		tasks = append(tasks, newVaccineTask(tripID, name, covered, snippet))
	}
	return tasks
}

// requiredNearby reports whether a requirement word occurs within the
// window following a vaccine mention.
func requiredNearby(lower string, from int) bool {
	to := from + requirementWindow
	if to > len(lower) {
		to = len(lower)
	}
	if from > len(lower) {
		from = len(lower)
	}
	window := lower[from:to]
	for _, w := range requirementWords {
		if strings.Contains(window, w) {
			return true
		}
	}
	return false
}

// attributeDestinations finds which trip destinations the text mentions
// near the vaccine. The comparison uses the country segment of each
// destination (the part after the last comma) so "Bangkok, Thailand"
// matches a sentence naming Thailand. No match attributes the vaccine to
// every destination.
func attributeDestinations(lower string, mention int, destinations []string) []string {
	from := mention - destinationWindow
	if from < 0 {
		from = 0
	}
	to := mention + destinationWindow
	if to > len(lower) {
		to = len(lower)
	}
	window := lower[from:to]

	var matched []string
	for _, dest := range destinations {
		if strings.Contains(window, strings.ToLower(countrySegment(dest))) {
			matched = append(matched, dest)
		}
	}
	if len(matched) == 0 {
		return destinations
	}
	return matched
}

// countrySegment returns the text after the last comma, or the whole
// string when there is none.
func countrySegment(destination string) string {
	if i := strings.LastIndex(destination, ","); i >= 0 {
		return strings.TrimSpace(destination[i+1:])
	}
	return strings.TrimSpace(destination)
}

// contextAround extracts the line containing the mention plus the two
// lines after it, capped at contextLimit characters.
func contextAround(text string, mention int) string {
	start := strings.LastIndexByte(text[:mention], '\n') + 1
	rest := text[start:]

	var lines []string
	for i, line := range strings.Split(rest, "\n") {
		if i >= 3 {
			break
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	snippet := strings.TrimSpace(strings.Join(lines, " "))
	if len(snippet) > contextLimit {
		snippet = snippet[:contextLimit]
	}
	return snippet
}

func newVaccineTask(tripID uuid.UUID, vaccine string, covered []string, snippet string) models.Task {
	timing := "2-4 weeks"
	switch vaccine {
	case "Yellow Fever", "Japanese Encephalitis":
		timing = "4-6 weeks"
	}

	desc := fmt.Sprintf("%s vaccination is required for entry to %s. "+
		"Schedule an appointment with a travel clinic. "+
		"Recommended timing: %s before departure.",
		vaccine, strings.Join(covered, ", "), timing)
	if snippet != "" && len(snippet) < 200 {
		desc += fmt.Sprintf(" Note: %s", snippet)
	}

	now := time.Now().UTC()
	return models.Task{
		ID:           uuid.New(),
		TripID:       tripID,
		Title:        fmt.Sprintf("Get required %s vaccine", vaccine),
		Description:  &desc,
		Category:     models.CategoryHealth,
		Priority:     models.PriorityHigh,
		Destinations: covered,
		Source:       models.SourceVaccineAgent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
