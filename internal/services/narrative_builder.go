package services

import (
	"fmt"
	"strings"

	"github.com/plhub/epl-analytics/internal/models"
)

// NarrativePlaceholder substitutes for the collaborator's reply when the
// narrative service fails or returns no content. The numeric payload is
// still returned in that case.
const NarrativePlaceholder = "Narrative commentary is currently unavailable for this analysis."

// TrajectorySystemPrompt is the fixed system instruction sent alongside every
// serialized prompt.
const TrajectorySystemPrompt = `You are an expert football scouting analyst writing for a Premier League analytics platform. ` +
	`You receive pre-computed statistical context: career-phase classification, statistically similar historical players, and a five-year market value projection. ` +
	`Write grounded, readable commentary strictly from the figures provided. Never invent statistics that are not in the context.`

// NarrativeContextBuilder serializes computed trajectory data into the
// fixed-shape prompt consumed by the narrative collaborator, and unwraps the
// collaborator's free-text reply. It is deterministic formatting only: every
// figure in a prompt traces to a field computed upstream.
type NarrativeContextBuilder struct{}

func NewNarrativeContextBuilder() *NarrativeContextBuilder {
	return &NarrativeContextBuilder{}
}

// BuildTrajectoryPrompt serializes a single-player trajectory.
func (b *NarrativeContextBuilder) BuildTrajectoryPrompt(side *models.TrajectorySide) string {
	var sb strings.Builder

	sb.WriteString("Write a scouting narrative for the following player trajectory analysis.\n\n")
	b.writeSide(&sb, side)
	sb.WriteString("\nANALYSIS REQUIREMENTS:\n")
	sb.WriteString("1. Summarize where the player sits on the age curve and what it implies\n")
	sb.WriteString("2. Use the historical precedents as relatable analogies\n")
	sb.WriteString("3. Interpret the value trajectory, including any peak passage\n")
	sb.WriteString("4. Keep the commentary to three or four paragraphs of prose\n")

	return sb.String()
}

// BuildComparisonPrompt serializes a two-player comparison context. Any
// judgment of who comes out ahead is left entirely to the collaborator.
func (b *NarrativeContextBuilder) BuildComparisonPrompt(ctx *models.ComparisonContext) string {
	var sb strings.Builder

	sb.WriteString("Write a head-to-head scouting narrative comparing the two player trajectories below.\n\n")
	sb.WriteString("=== PLAYER A ===\n\n")
	b.writeSide(&sb, &ctx.PlayerA)
	sb.WriteString("\n=== PLAYER B ===\n\n")
	b.writeSide(&sb, &ctx.PlayerB)

	if ctx.Note != "" {
		sb.WriteString("\nSITUATIONAL CONTEXT:\n")
		sb.WriteString(ctx.Note)
		sb.WriteString("\n")
	}

	sb.WriteString("\nANALYSIS REQUIREMENTS:\n")
	sb.WriteString("1. Compare career phases and remaining development runway\n")
	sb.WriteString("2. Contrast the five-year value trajectories, including peak values\n")
	sb.WriteString("3. Weigh the historical precedents for each player\n")
	sb.WriteString("4. Give a reasoned verdict on which trajectory is more promising\n")

	return sb.String()
}

// writeSide emits the fixed labeled sections for one trajectory: profile,
// age-curve summary, historical precedents, year-by-year projection.
func (b *NarrativeContextBuilder) writeSide(sb *strings.Builder, side *models.TrajectorySide) {
	p := side.Player
	curve := side.AgeCurve

	sb.WriteString("PLAYER PROFILE:\n")
	fmt.Fprintf(sb, "- Name: %s\n", p.Name)
	fmt.Fprintf(sb, "- Position: %s\n", p.Position)
	if p.Club != "" {
		fmt.Fprintf(sb, "- Club: %s\n", p.Club)
	}
	fmt.Fprintf(sb, "- Age: %d\n", p.Age)
	fmt.Fprintf(sb, "- Season: rating %.2f, %d goals, %d assists, %.2f xG, %.2f xA, %d progressive passes in %d minutes (%d apps)\n",
		p.Rating, p.Goals, p.Assists, p.ExpectedGoals, p.ExpectedAssists, p.ProgressivePasses, p.MinutesPlayed, p.Appearances)
	fmt.Fprintf(sb, "- Discipline: %d yellow, %d red\n", p.YellowCards, p.RedCards)

	sb.WriteString("\nAGE CURVE:\n")
	fmt.Fprintf(sb, "- Phase: %s\n", curve.Phase)
	fmt.Fprintf(sb, "- Peak age for position: %d (years until peak: %d)\n", curve.PeakAge, curve.YearsUntilPeak)
	fmt.Fprintf(sb, "- Current rating %.2f, projected peak rating %.2f (%+.1f%%)\n",
		curve.CurrentRating, curve.ProjectedPeakRating, curve.UpliftPercent)
	fmt.Fprintf(sb, "- %s\n", curve.Description)

	sb.WriteString("\nHISTORICAL PRECEDENTS:\n")
	if len(side.Comparables) == 0 {
		sb.WriteString("- No statistically similar players met the sample threshold\n")
	}
	for i, comp := range side.Comparables {
		club := ""
		if comp.Club != "" {
			club = fmt.Sprintf(", %s", comp.Club)
		}
		fmt.Fprintf(sb, "%d. %s (age %d%s) - %.1f%% statistical similarity, rating %.2f\n",
			i+1, comp.PlayerName, comp.Age, club, comp.Similarity, comp.Rating)
	}

	sb.WriteString("\nFIVE-YEAR VALUE PROJECTION:\n")
	for _, point := range side.Projection.Points {
		fmt.Fprintf(sb, "- Year %d (age %d): rating %.1f, value %.1fm\n",
			point.Year, point.Age, point.Rating, point.Value)
	}
	fmt.Fprintf(sb, "- Current value %.1fm, projected peak value %.1fm\n",
		side.Projection.CurrentValue, side.Projection.PeakValue)
}

// UnwrapResponse accepts the collaborator's reply verbatim; it is opaque
// prose and never parsed. Empty content becomes the fixed placeholder.
func (b *NarrativeContextBuilder) UnwrapResponse(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return NarrativePlaceholder
	}
	return text
}
