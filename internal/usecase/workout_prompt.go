package usecase

import (
	"strings"
	"text/template"

	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/adapter"
)

const workoutSystemPrompt = "You are a world-class certified personal trainer and fitness coach. " +
	"Your task is to generate a detailed, structured, and personalized workout plan based on the user's specific details. " +
	"The output MUST be a valid JSON object matching the provided schema."

var workoutPromptTmpl = template.Must(template.New("workout").Parse(`User Details:
- Fitness Goals: {{.FitnessGoals}}
- Subscription Level: {{.SubscriptionLevel}}
- Current Fitness Level: {{.CurrentFitnessLevel}}
- Equipment Available: {{.EquipmentAvailable}}
- Time Commitment: {{.TimeCommitment}}

Instructions:
1. Create a catchy and motivating title for the workout plan.
2. Generate a weekly schedule as an array of daily workouts.
3. For each day, specify the day (e.g., "Day 1" or "Monday"), the main focus (e.g., "Upper Body Strength", "Cardio & Core"), and a list of exercises.
4. For each exercise, provide the name, number of sets, reps (or duration), and rest time between sets. Add optional notes for form or tips where helpful.
5. Tailor the plan's complexity and volume to the user's subscription level: {{.SubscriptionLevel}}. A "vip" plan should be more comprehensive, including warm-ups and cool-downs, while a "basic" plan can be more straightforward.
6. Include a brief disclaimer recommending the user consult a healthcare professional before starting any new fitness program.
`))

// renderWorkoutPrompt embeds every request field verbatim.
func renderWorkoutPrompt(req model.WorkoutPlanRequest) (string, error) {
	var sb strings.Builder
	if err := workoutPromptTmpl.Execute(&sb, req); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func str(desc string) *adapter.Schema {
	return &adapter.Schema{Type: adapter.TypeString, Description: desc}
}

// workoutPlanSchema mirrors model.WorkoutPlan.
var workoutPlanSchema = &adapter.Schema{
	Type:        adapter.TypeObject,
	Description: "A personalized weekly workout plan.",
	Properties: map[string]*adapter.Schema{
		"title": str("A catchy and descriptive title for the generated workout plan."),
		"weeklySchedule": {
			Type:        adapter.TypeArray,
			Description: "A structured array representing the weekly workout schedule.",
			Items: &adapter.Schema{
				Type: adapter.TypeObject,
				Properties: map[string]*adapter.Schema{
					"day":   str(`The day of the workout (e.g., "Day 1", "Monday").`),
					"focus": str(`The main muscle group or focus for the day (e.g., "Chest & Triceps", "Full Body Strength").`),
					"exercises": {
						Type:        adapter.TypeArray,
						Description: "A list of exercises for the workout day.",
						Items: &adapter.Schema{
							Type: adapter.TypeObject,
							Properties: map[string]*adapter.Schema{
								"name":  str("Name of the exercise."),
								"sets":  str(`Number of sets (e.g., "3-4").`),
								"reps":  str(`Number of repetitions (e.g., "8-12").`),
								"rest":  str(`Rest time between sets (e.g., "60-90 seconds").`),
								"notes": str("Additional notes or instructions for the exercise."),
							},
							Required: []string{"name", "sets", "reps", "rest"},
							Ordering: []string{"name", "sets", "reps", "rest", "notes"},
						},
					},
				},
				Required: []string{"day", "focus", "exercises"},
				Ordering: []string{"day", "focus", "exercises"},
			},
		},
		"disclaimer": str("A disclaimer to consult a doctor before starting any new workout regimen."),
	},
	Required: []string{"title", "weeklySchedule"},
	Ordering: []string{"title", "weeklySchedule", "disclaimer"},
}
