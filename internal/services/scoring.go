// internal/services/scoring.go
package services

import (
	"math"
	"strings"

	"github.com/xkmato/uvocollab-sub001/internal/models"
)

// Component weights of the compatibility score.
const (
	topicWeight        = 40.0
	budgetWeight       = 30.0
	verificationBonus  = 15.0
	availabilityBonus  = 15.0
	budgetReceiverFree = 25.0
	budgetAmbiguous    = 15.0
)

// ScoreInput carries everything the scorer needs about one candidate pair.
// Malformed values (negative amounts, nil topic lists) degrade to zero/empty
// defaults rather than failing.
type ScoreInput struct {
	GuestTopics      []string
	PodcastTopics    []string
	GuestOffer       float64 // what the guest offers to pay, 0 when free
	PodcastBudget    float64 // what the podcast budgets for the guest, 0 when free
	GuestVerified    bool
	HasActiveService bool // counterpart has at least one active service offering
}

// CompatibilityResult is the scored outcome for a candidate pair.
type CompatibilityResult struct {
	Score           int                    `json:"score"`
	TopicOverlap    []string               `json:"topic_overlap"`
	BudgetAlignment models.BudgetAlignment `json:"budget_alignment"`
}

// ScoreCompatibility computes the 0-100 match score for a mutual-interest
// pair. Pure function, no side effects.
func ScoreCompatibility(in ScoreInput) CompatibilityResult {
	overlap, union := topicSets(in.GuestTopics, in.PodcastTopics)

	var total float64
	if union > 0 {
		total += float64(len(overlap)) / float64(union) * topicWeight
	}
	total += budgetComponent(in.GuestOffer, in.PodcastBudget)
	if in.GuestVerified {
		total += verificationBonus
	}
	if in.HasActiveService {
		total += availabilityBonus
	}

	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return CompatibilityResult{
		Score:           score,
		TopicOverlap:    overlap,
		BudgetAlignment: alignBudgets(in.GuestOffer, in.PodcastBudget),
	}
}

// budgetComponent is tiered by the sign combination of the two amounts. A
// free guest with a paying podcast is the ideal arrangement; both sides
// naming a price needs negotiation.
func budgetComponent(guestOffer, podcastBudget float64) float64 {
	guestFree := guestOffer <= 0
	podcastFree := podcastBudget <= 0

	switch {
	case guestFree && podcastFree:
		return budgetWeight
	case guestFree && !podcastFree:
		return budgetWeight
	case !guestFree && podcastFree:
		return budgetReceiverFree
	default:
		return budgetAmbiguous
	}
}

func alignBudgets(guestOffer, podcastBudget float64) models.BudgetAlignment {
	guestFree := guestOffer <= 0
	podcastFree := podcastBudget <= 0

	switch {
	case guestFree && podcastFree:
		return models.BudgetAlignmentPerfect
	case guestFree && !podcastFree:
		return models.BudgetAlignmentPerfect
	case !guestFree && podcastFree:
		return models.BudgetAlignmentClose
	default:
		return models.BudgetAlignmentNegotiable
	}
}

// topicSets returns the case-insensitive intersection (original casing from
// the guest side) and the size of the union.
func topicSets(a, b []string) ([]string, int) {
	union := make(map[string]struct{})
	bSet := make(map[string]struct{})

	for _, t := range b {
		key := normalizeTopic(t)
		if key == "" {
			continue
		}
		bSet[key] = struct{}{}
		union[key] = struct{}{}
	}

	overlap := []string{}
	seen := make(map[string]struct{})
	for _, t := range a {
		key := normalizeTopic(t)
		if key == "" {
			continue
		}
		union[key] = struct{}{}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := bSet[key]; ok {
			overlap = append(overlap, strings.TrimSpace(t))
		}
	}

	return overlap, len(union)
}

func normalizeTopic(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
