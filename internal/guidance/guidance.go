// Package guidance holds the static tone and length instructions that are
// appended to the retrieved context.
package guidance

import (
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/style"
)

var toneGuidance = map[emotion.Label]string{
	emotion.Distressed: `This user is in significant distress. Your response should:
- Lead with validation and empathy for their difficult emotions
- Use a calm, steady tone
- Focus on immediate emotional stabilization
- Provide clear, simple grounding techniques
- Gently encourage professional support if appropriate
- Avoid overwhelming with too many suggestions
- End with a note of realistic hope and support`,

	emotion.Sad: `This user is feeling sad or down. Your response should:
- Validate their feelings without minimizing them
- Express empathy for their experience
- Normalize sadness as a natural emotion
- Offer gentle perspective while honoring their feelings
- Suggest small, achievable actions for self-care
- Balance realism with gentle encouragement`,

	emotion.Anxious: `This user is experiencing anxiety. Your response should:
- Acknowledge their worries without amplifying them
- Use calming, measured language
- Provide factual information if they have specific fears
- Suggest grounding or breathing techniques
- Help them distinguish between productive and unproductive worry
- Gently challenge catastrophic thinking if present`,

	emotion.Angry: `This user is feeling angry or frustrated. Your response should:
- Validate their feelings without judgment
- Maintain a calm, non-defensive tone
- Acknowledge any legitimate grievances
- Help identify the underlying needs or values at stake
- Suggest constructive ways to channel the energy
- Provide perspective without dismissing their feelings`,

	emotion.Neutral: `This user is in a relatively neutral emotional state. Your response should:
- Match their neutral tone while remaining warm
- Be straightforward and informative
- Focus on their specific questions or needs
- Provide balanced perspective
- Offer practical suggestions relevant to their situation`,

	emotion.Content: `This user is in a positive emotional state. Your response should:
- Celebrate and reinforce their positive feelings
- Match their optimistic tone
- Help them identify what's working well
- Suggest ways to build on current successes
- Provide additional insights that might be helpful
- Maintain realistic optimism`,

	emotion.Hopeful: `This user is feeling hopeful or optimistic. Your response should:
- Affirm and strengthen their sense of hope
- Build on their positive momentum
- Offer additional perspectives or resources
- Help them set realistic but meaningful goals
- Balance optimism with practical next steps
- Encourage continued growth and reflection`,
}

var lengthGuidance = map[style.LengthBucket]string{
	style.Short: `Keep your response concise and supportive (1-2 short paragraphs).
Focus on validation and perhaps one simple suggestion or question.
Ideal for brief check-ins or straightforward questions.`,

	style.Medium: `Provide a balanced response (2-3 paragraphs) with:
- Validation of their experience
- Gentle insights or perspective
- 1-2 specific suggestions or questions
This length is ideal for most therapeutic exchanges.`,

	style.Long: `Give a comprehensive response (4+ paragraphs) with:
- Thorough validation and normalization
- Detailed perspective or psychoeducation
- Multiple coping strategies or techniques
- Thoughtful questions to deepen exploration
- Clear structure with natural progression
This length is best for complex issues or educational content.`,
}

// Tone returns the tone instructions for an emotion. Unknown labels get the
// neutral text.
func Tone(l emotion.Label) string {
	if g, ok := toneGuidance[l]; ok {
		return g
	}
	return toneGuidance[emotion.Neutral]
}

// Length returns the length instructions for a bucket, defaulting to medium.
func Length(b style.LengthBucket) string {
	if g, ok := lengthGuidance[b]; ok {
		return g
	}
	return lengthGuidance[style.Medium]
}
