package ai

import (
	"fmt"
	"strings"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

func buildTaskPrompt(trip *models.Trip) string {
	destinations := strings.Join(trip.Destinations, ", ")

	var b strings.Builder
	b.WriteString("Generate a comprehensive preparation task list for this trip:\n\n")
	fmt.Fprintf(&b, "Trip Name: %s\n", trip.Name)
	if trip.Description != nil {
		fmt.Fprintf(&b, "Description: %s\n", *trip.Description)
	}
	fmt.Fprintf(&b, "\nDestinations: %s\n", destinations)
	if trip.StartPoint != nil {
		fmt.Fprintf(&b, "Start Point: %s\n", *trip.StartPoint)
	}
	if trip.EndPoint != nil {
		fmt.Fprintf(&b, "End Point: %s\n", *trip.EndPoint)
	}
	fmt.Fprintf(&b, "Dates: %s to %s\n", formatDate(trip.StartDate), formatDate(trip.EndDate))
	fmt.Fprintf(&b, "Travelers: %d adults, %d children\n", trip.AdultsCount, trip.ChildrenCount)
	if len(trip.Preferences) > 0 {
		fmt.Fprintf(&b, "Preferences: %s\n", strings.Join(trip.Preferences, ", "))
	}
	if len(trip.Transportation) > 0 {
		fmt.Fprintf(&b, "Transportation: %s\n", strings.Join(trip.Transportation, ", "))
	}
	fmt.Fprintf(&b, "Budget: %d %s\n", trip.Budget, trip.Currency)

	b.WriteString("\nGenerate a complete task list covering:\n")
	b.WriteString("1. Pre-trip planning tasks (visas, vaccinations, insurance)\n")
	b.WriteString("2. Booking tasks (flights, accommodation, activities)\n")
	b.WriteString("3. Financial preparation (currency, budget, cards)\n")
	b.WriteString("4. Packing and preparation\n")
	fmt.Fprintf(&b, "5. Destination-specific requirements for: %s\n", destinations)

	b.WriteString("\nReturn ONLY a JSON array of task objects. Each task must have:\n")
	b.WriteString("- title (string, concise and actionable)\n")
	b.WriteString("- description (string, optional, more details if helpful)\n")
	b.WriteString("- category (string, one of: general, visa, accommodation, transportation, health, finance, packing, activities, documentation)\n")
	b.WriteString("- priority (string, one of: high, medium, low)\n")
	b.WriteString("\nBe specific and actionable.")
	return b.String()
}

func buildProfilePrompt(trip *models.Trip) string {
	var b strings.Builder
	b.WriteString("Based on the following trip details, generate a catchy name and a short, engaging one-sentence description.\n\n")
	fmt.Fprintf(&b, "Destinations: %s\n", strings.Join(trip.Destinations, ", "))
	fmt.Fprintf(&b, "Dates: %s to %s\n", formatDate(trip.StartDate), formatDate(trip.EndDate))
	fmt.Fprintf(&b, "Travelers: %d adults, %d children\n", trip.AdultsCount, trip.ChildrenCount)
	if len(trip.Preferences) > 0 {
		fmt.Fprintf(&b, "Preferences: %s\n", strings.Join(trip.Preferences, ", "))
	}
	b.WriteString("\nTrip names should be concise (3-7 words), evocative, and memorable.\n")
	b.WriteString("Return ONLY a valid JSON object with \"name\" and \"description\" properties.\n")
	b.WriteString("Example: {\"name\": \"Kyoto to Tokyo: Temple & Tech\", \"description\": \"Experience ancient traditions and futuristic innovations on a cultural journey through Japan's most iconic cities.\"}")
	return b.String()
}

func buildDayPrompt(trip *models.Trip, day int, prevSummary string) string {
	date := trip.StartDate.AddDate(0, 0, day-1)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a detailed itinerary for DAY %d of this trip:\n\n", day)
	b.WriteString("Trip Overview:\n")
	fmt.Fprintf(&b, "- Destinations: %s\n", strings.Join(trip.Destinations, ", "))
	fmt.Fprintf(&b, "- Date for Day %d: %s\n", day, formatDate(date))
	fmt.Fprintf(&b, "- Travelers: %d adults, %d children\n", trip.AdultsCount, trip.ChildrenCount)
	if len(trip.Preferences) > 0 {
		fmt.Fprintf(&b, "- Preferences: %s\n", strings.Join(trip.Preferences, ", "))
	}
	fmt.Fprintf(&b, "- Budget: %d %s total\n", trip.Budget, trip.Currency)
	if len(trip.Transportation) > 0 {
		fmt.Fprintf(&b, "- Transportation: %s\n", strings.Join(trip.Transportation, ", "))
	}

	if prevSummary != "" {
		fmt.Fprintf(&b, "\nPrevious Days Summary:\n%s\n", prevSummary)
	}

	fmt.Fprintf(&b, "\nCreate 4-6 activities for Day %d. Include:\n", day)
	b.WriteString("- Morning activity (breakfast + main activity)\n")
	b.WriteString("- Lunch\n")
	b.WriteString("- Afternoon activity\n")
	b.WriteString("- Dinner\n")
	b.WriteString("- Optional evening activity\n")
	b.WriteString("\nBalance activities with rest time, consider realistic travel times, and account for opening hours.\n")
	b.WriteString("\nReturn ONLY a JSON array of itinerary items, no other text. Each item must have:\n")
	b.WriteString("- title (string)\n")
	b.WriteString("- description (string, optional)\n")
	b.WriteString("- location (string, specific place name)\n")
	b.WriteString("- type (string, one of: activity, transport, accommodation, meal)\n")
	b.WriteString("- start_time and end_time (strings, \"HH:MM:SS\")\n")
	b.WriteString("- cost (integer, estimated cost in the trip currency)")
	return b.String()
}
