package openai

import "fmt"

const systemPrompt = "You are an expert sports analyst who identifies the most exciting and important moments in sports games from transcripts."

func buildAnalysisPrompt(transcript string, maxHighlights int) string {
	return fmt.Sprintf(`Analyze this sports game transcript and identify the top %d most exciting and important highlight moments. Focus on:

1. Scoring moments (goals, touchdowns, baskets, runs, etc.)
2. Game-changing plays (turnovers, interceptions, saves, blocks)
3. Dramatic moments (close calls, controversial decisions, clutch plays)
4. Exceptional individual performances (great saves, spectacular plays)
5. Momentum shifts (comebacks, key defensive stops)
6. Critical game situations (overtime, final minutes, penalties)

For each highlight, provide:
- Exact start time (in seconds from video start)
- Exact end time (in seconds from video start)
- Brief description (1-2 sentences max)
- Importance score (1-10, where 10 is most exciting/important)
- Category (goal, save, foul, turnover, celebration, controversy, etc.)

IMPORTANT FORMATTING REQUIREMENTS:
- Return ONLY a JSON array of highlights
- Each highlight must be a JSON object with exactly these fields: start_time, end_time, description, importance_score, category
- Times must be in seconds (numbers, not strings)
- Importance scores must be numbers between 1-10
- Sort by importance_score (highest first)

Transcript:
%s

Response format (JSON only):
[
  {
    "start_time": 125.5,
    "end_time": 135.2,
    "description": "Amazing goal in the 15th minute",
    "importance_score": 9.5,
    "category": "goal"
  }
]
`, maxHighlights, transcript)
}
