package emotion

// Trend is the direction of a user's recent emotional states.
type Trend string

const (
	Improving Trend = "improving"
	Stable    Trend = "stable"
	Declining Trend = "declining"
)

// trendWindow is how many recent labels a trend compares.
const trendWindow = 3

var trendDescriptions = map[Trend]string{
	Improving: "Your emotional wellbeing appears to be improving over recent conversations.",
	Stable:    "Your emotional state has been relatively stable recently.",
	Declining: "There seems to be an increase in challenging emotions in recent conversations.",
}

// Description is the user-facing explanation of the trend.
func (t Trend) Description() string {
	return trendDescriptions[t]
}

// TrendOf compares the newest of the last three labels (oldest first) with
// the oldest of them. Fewer than three labels is always stable.
func TrendOf(labels []Label) Trend {
	if len(labels) < trendWindow {
		return Stable
	}
	recent := labels[len(labels)-trendWindow:]
	first, last := recent[0].Ordinal(), recent[trendWindow-1].Ordinal()
	switch {
	case last > first:
		return Improving
	case last < first:
		return Declining
	default:
		return Stable
	}
}

// Negative reports whether the label sits below neutral on the axis.
func (l Label) Negative() bool { return l.Ordinal() < 0 }

// RecommendationsFor returns the label's coping actions followed by any
// actions the trend calls for.
func RecommendationsFor(l Label, t Trend) []string {
	recs := l.Recommendations()
	switch {
	case t == Declining && !l.Negative():
		recs = append(recs,
			"Notice early signs of stress and address them proactively",
			"Maintain supportive routines as prevention",
		)
	case t == Declining && l.Negative():
		recs = append(recs,
			"Consider reaching out to a mental health professional",
			"Increase self-care activities and supportive connections",
		)
	case t == Improving && l.Negative():
		recs = append(recs,
			"Notice what's helping and continue those practices",
			"Document effective coping strategies for future reference",
		)
	}
	return recs
}

// State summarizes a user's current emotional state for display.
type State struct {
	Emotion         Label    `json:"state"`
	Confidence      float64  `json:"confidence"`
	Trend           Trend    `json:"trend"`
	ColorCode       string   `json:"color_code"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// Summarize builds the State for a history of labels (oldest first) whose
// newest entry was classified with the given confidence.
func Summarize(labels []Label, confidence float64) State {
	current := Neutral
	if len(labels) > 0 {
		current = labels[len(labels)-1]
	} else {
		confidence = 0.5
	}
	trend := TrendOf(labels)

	desc := current.Description()
	if td := trend.Description(); td != "" {
		desc += " " + td
	}

	return State{
		Emotion:         current,
		Confidence:      confidence,
		Trend:           trend,
		ColorCode:       current.Color(),
		Description:     desc,
		Recommendations: RecommendationsFor(current, trend),
	}
}
