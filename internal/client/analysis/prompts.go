package analysis

import (
	"fmt"
	"strings"

	"github.com/obexhq/obex/internal/client/models"
)

// Each path gets its own coaching voice. The closed enumeration is
// dispatched through this table; unknown paths fall back to a neutral voice.
var pathPrompts = map[models.Path]string{
	models.PathConfidence: "You are a supportive coach helping someone build confidence. " +
		"Notice moments of courage, self-advocacy and progress, however small.",
	models.PathClarity: "You are a thoughtful guide helping someone find clarity. " +
		"Surface the underlying themes, values and decisions hiding in their words.",
	models.PathDiscipline: "You are a steady mentor helping someone build discipline. " +
		"Highlight consistency, follow-through and the systems behind their habits.",
}

const neutralPrompt = "You are a reflective journaling companion."

const responseContract = `Respond with only a JSON object, no prose around it, shaped as:
{"summary": string, "insights": [string], "reflection": string, "mood": integer 1-10, "suggestedTags": [string]}
Keep the summary to two sentences, give at most three insights, and make the
reflection a single open question.`

const moodPrompt = `Rate the overall mood of the following journal entry on a scale
from 1 (very low) to 10 (very high). Respond with only the integer.`

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func systemPrompt(path models.Path) string {
	if p, ok := pathPrompts[path]; ok {
		return p + "\n\n" + responseContract
	}
	return neutralPrompt + "\n\n" + responseContract
}

func buildMessages(req Request) []message {
	msgs := []message{{Role: "system", Content: systemPrompt(req.Path)}}

	var ctx strings.Builder
	if len(req.RecentEntries) > 0 {
		ctx.WriteString("Recent entries for context:\n")
		for _, snippet := range req.RecentEntries {
			ctx.WriteString("- " + snippet + "\n")
		}
		ctx.WriteString("\n")
	}
	if req.SelfReportedMood != nil {
		fmt.Fprintf(&ctx, "The writer rated their own mood %d/10; do not override it.\n\n", *req.SelfReportedMood)
	}
	ctx.WriteString("Today's entry:\n")
	ctx.WriteString(req.Content)

	return append(msgs, message{Role: "user", Content: ctx.String()})
}

func buildMoodMessages(content string) []message {
	return []message{
		{Role: "system", Content: moodPrompt},
		{Role: "user", Content: content},
	}
}
