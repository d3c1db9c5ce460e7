package engine

import (
	"fmt"
	"strings"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
)

const systemPromptTemplate = `You are WARDA (Wellness and Resilience Diagnostic AI), a compassionate mental health assistant.
Always respond with empathy and understanding. Your purpose is to:
1. Listen and validate the user's feelings
2. Ask thoughtful questions to understand their situation better
3. Offer gentle perspective and coping strategies when appropriate
4. Remind users they're not alone in their struggles
5. Encourage professional help for serious concerns

The user appears to be in a %s emotional state. Respond with appropriate tone and depth.

Keep responses warm, supportive, and non-judgmental. Never minimize someone's feelings.
Use a thoughtful, kind tone similar to how a skilled therapist would respond.

IMPORTANT: Use the retrieved context to inform your response. This includes relevant information and examples
of how skilled therapists respond to similar situations. Follow the guidance on tone and length.`

// SystemPrompt returns the persona prompt for the detected emotion.
func SystemPrompt(l emotion.Label) string {
	return fmt.Sprintf(systemPromptTemplate, l)
}

// UserContent assembles the user message: the query, then up to window
// recent turns, then the retrieved context.
func UserContent(query string, history []Turn, window int, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User's query: %s\n\n", query)

	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	if window > 0 && len(history) > 0 {
		b.WriteString("Recent conversation history:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n\n", t.Query, t.Response)
		}
		b.WriteString("\n")
	}

	if context != "" {
		fmt.Fprintf(&b, "Retrieved context information:\n%s\n\n", context)
	}
	return b.String()
}
