package model

import (
	"fmt"
	"strings"

	"gym-membership/internal/domain"
)

type FitnessLevel string

const (
	FitnessBeginner     FitnessLevel = "beginner"
	FitnessIntermediate FitnessLevel = "intermediate"
	FitnessAdvanced     FitnessLevel = "advanced"
)

var validEquipment = map[string]struct{}{
	"bodyweight": {},
	"home_gym":   {},
	"full_gym":   {},
}

// WorkoutPlanRequest is the generator input. Every field is required.
type WorkoutPlanRequest struct {
	FitnessGoals        string       `json:"fitnessGoals"`
	SubscriptionLevel   Tier         `json:"subscriptionLevel"`
	CurrentFitnessLevel FitnessLevel `json:"currentFitnessLevel"`
	EquipmentAvailable  string       `json:"equipmentAvailable"`
	TimeCommitment      string       `json:"timeCommitment"`
}

func (r WorkoutPlanRequest) Validate() error {
	if strings.TrimSpace(r.FitnessGoals) == "" {
		return domain.Invalid("fitnessGoals", "is required")
	}
	if !r.SubscriptionLevel.Valid() {
		return domain.Invalid("subscriptionLevel", "must be one of basic, premium, vip")
	}
	switch r.CurrentFitnessLevel {
	case FitnessBeginner, FitnessIntermediate, FitnessAdvanced:
	default:
		return domain.Invalid("currentFitnessLevel", "must be one of beginner, intermediate, advanced")
	}
	if _, ok := validEquipment[r.EquipmentAvailable]; !ok {
		return domain.Invalid("equipmentAvailable", "must be one of bodyweight, home_gym, full_gym")
	}
	if strings.TrimSpace(r.TimeCommitment) == "" {
		return domain.Invalid("timeCommitment", "is required")
	}
	return nil
}

type Exercise struct {
	Name  string `json:"name"`
	Sets  string `json:"sets"`
	Reps  string `json:"reps"`
	Rest  string `json:"rest"`
	Notes string `json:"notes,omitempty"`
}

type WorkoutDay struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutPlan is the generator output.
type WorkoutPlan struct {
	Title          string       `json:"title"`
	WeeklySchedule []WorkoutDay `json:"weeklySchedule"`
	Disclaimer     string       `json:"disclaimer,omitempty"`
}

// Validate rejects partially filled plans.
func (p *WorkoutPlan) Validate() error {
	if p == nil {
		return fmt.Errorf("empty plan")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("missing title")
	}
	if len(p.WeeklySchedule) == 0 {
		return fmt.Errorf("empty weekly schedule")
	}
	for i, d := range p.WeeklySchedule {
		if strings.TrimSpace(d.Day) == "" {
			return fmt.Errorf("day %d: missing day", i)
		}
		if len(d.Exercises) == 0 {
			return fmt.Errorf("day %d: no exercises", i)
		}
		for j, e := range d.Exercises {
			if blank(e.Name) || blank(e.Sets) || blank(e.Reps) || blank(e.Rest) {
				return fmt.Errorf("day %d exercise %d: missing required field", i, j)
			}
		}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
