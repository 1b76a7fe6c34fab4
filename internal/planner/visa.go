package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/visa"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// resolvedDestination pairs an original destination string with its
// resolved country code, preserving trip order.
type resolvedDestination struct {
	Name string
	Code string
}

// visaTasks builds visa and documentation tasks for a trip. One provider
// call per unique destination country, the passport country skipped. A
// failed provider call degrades to a generic research task for that
// destination; an unresolvable passport degrades to research tasks for
// every destination.
func visaTasks(ctx context.Context, client visa.Client, tripID uuid.UUID, passportCode string, destinations []resolvedDestination) []models.Task {
	if passportCode == "" {
		var tasks []models.Task
		for _, d := range destinations {
			tasks = append(tasks, fallbackVisaTask(tripID, d.Name))
		}
		return tasks
	}

	var tasks []models.Task
	seen := make(map[string]bool)
	for _, d := range destinations {
		if seen[d.Code] {
			continue
		}
		seen[d.Code] = true

		if d.Code == passportCode {
			continue
		}

		rule, err := client.Check(ctx, passportCode, d.Code)
		if err != nil {
			slog.Warn("visa check failed, using fallback task",
				"passport", passportCode, "destination", d.Code, "error", err)
			tasks = append(tasks, fallbackVisaTask(tripID, d.Name))
			continue
		}

		tasks = append(tasks, tasksFromVisaRule(tripID, d.Name, destinationsForCode(destinations, d.Code), rule)...)
	}
	return tasks
}

// destinationsForCode lists every original destination string that
// resolved to the given country.
func destinationsForCode(destinations []resolvedDestination, code string) []string {
	var names []string
	for _, d := range destinations {
		if d.Code == code {
			names = append(names, d.Name)
		}
	}
	return names
}

// tasksFromVisaRule converts a classified rule into tasks. The rule kind
// decides the shape: visa-free yields a passport-validity check, the
// other kinds a visa task; a mandatory registration always adds one more.
func tasksFromVisaRule(tripID uuid.UUID, destination string, covered []string, rule *models.VisaRule) []models.Task {
	var tasks []models.Task

	switch rule.Primary.Kind {
	case models.VisaRuleFree:
		desc := fmt.Sprintf("Ensure your passport is valid for entry to %s. ", destination)
		if rule.PassportValidity != "" {
			desc += fmt.Sprintf("Required validity: %s. ", rule.PassportValidity)
		}
		if rule.Primary.Duration != "" {
			desc += fmt.Sprintf("Entry allowed for: %s. ", rule.Primary.Duration)
		}
		desc += "Recommended: Verify 6 weeks before trip."
		tasks = append(tasks, newVisaTask(tripID,
			fmt.Sprintf("Check passport validity for %s", destination),
			desc, models.CategoryDocumentation, covered))

	case models.VisaRuleRequired:
		desc := fmt.Sprintf("Apply for visa to %s. Visa type: %s. ", destination, rule.Primary.Name)
		if rule.Primary.Duration != "" {
			desc += fmt.Sprintf("Duration: %s. ", rule.Primary.Duration)
		}
		if rule.PassportValidity != "" {
			desc += fmt.Sprintf("Passport validity required: %s. ", rule.PassportValidity)
		}
		if rule.Primary.Link != "" {
			desc += fmt.Sprintf("Application link: %s. ", rule.Primary.Link)
		} else if rule.EmbassyURL != "" {
			desc += fmt.Sprintf("Embassy info: %s. ", rule.EmbassyURL)
		}
		desc += "Recommended: Apply 6-8 weeks before trip."
		tasks = append(tasks, newVisaTask(tripID,
			fmt.Sprintf("Apply for %s visa", destination),
			desc, models.CategoryVisa, covered))

	case models.VisaRuleOnArrival, models.VisaRuleEVisa:
		desc := fmt.Sprintf("Obtain %s for %s. ", rule.Primary.Name, destination)
		if rule.Primary.Duration != "" {
			desc += fmt.Sprintf("Duration: %s. ", rule.Primary.Duration)
		}
		if rule.PassportValidity != "" {
			desc += fmt.Sprintf("Passport validity required: %s. ", rule.PassportValidity)
		}
		if rule.Primary.Link != "" {
			desc += fmt.Sprintf("More info: %s. ", rule.Primary.Link)
		}
		if rule.Secondary != nil {
			desc += fmt.Sprintf("Alternative: %s", rule.Secondary.Name)
			if rule.Secondary.Duration != "" {
				desc += fmt.Sprintf(" (%s)", rule.Secondary.Duration)
			}
			if rule.Secondary.Link != "" {
				desc += fmt.Sprintf(" - %s", rule.Secondary.Link)
			}
			desc += ". "
		}
		desc += "Recommended: Check requirements 3-4 weeks before trip."
		tasks = append(tasks, newVisaTask(tripID,
			fmt.Sprintf("Get %s for %s", rule.Primary.Name, destination),
			desc, models.CategoryVisa, covered))

	default:
		// Unclassifiable rule; safer to send the traveler researching.
		tasks = append(tasks, fallbackVisaTask(tripID, destination))
	}

	if rule.Registration != nil {
		desc := fmt.Sprintf("Complete %s for %s. This is mandatory before arrival. ", rule.Registration.Name, destination)
		if rule.Registration.Link != "" {
			desc += fmt.Sprintf("Registration link: %s. ", rule.Registration.Link)
		}
		desc += "Recommended: Complete 1-2 weeks before trip."
		tasks = append(tasks, newVisaTask(tripID,
			fmt.Sprintf("Complete %s for %s", rule.Registration.Name, destination),
			desc, models.CategoryDocumentation, covered))
	}

	return tasks
}

func fallbackVisaTask(tripID uuid.UUID, destination string) models.Task {
	desc := fmt.Sprintf("Check if visa is required for %s and apply if necessary. "+
		"Visit official embassy website or government travel advisory. "+
		"Recommended: 6 weeks before trip.", destination)
	return newVisaTask(tripID,
		fmt.Sprintf("Research visa requirements for %s", destination),
		desc, models.CategoryVisa, []string{destination})
}

func newVisaTask(tripID uuid.UUID, title, description, category string, covered []string) models.Task {
	now := time.Now().UTC()
	desc := strings.TrimSpace(description)
	return models.Task{
		ID:           uuid.New(),
		TripID:       tripID,
		Title:        title,
		Description:  &desc,
		Category:     category,
		Priority:     models.PriorityHigh,
		Destinations: covered,
		Source:       models.SourceVisaAgent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
