package summarize

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

const (
	// maxPromptQuotes bounds the number of member quotes put in a prompt
	maxPromptQuotes = 20
	// maxQuoteLength bounds each quote in characters
	maxQuoteLength = 600
)

// SystemPrompt restricts the generation service to the supplied quotes
const SystemPrompt = "You write strict factual summaries based only on the text you are given. Never add facts that are not stated in the supplied quotes."

// BuildPrompt creates the user prompt for one cluster
func BuildPrompt(cluster *model.Cluster, canonical *model.Date) string {
	var sb strings.Builder

	sb.WriteString("The quotes below come from news articles and describe one milestone of an event.\n")
	sb.WriteString("Respond with exactly one JSON object with these keys:\n\n")
	sb.WriteString("- date: the date of the milestone as YYYY-MM-DD, or null if it cannot be determined\n")
	sb.WriteString("- milestone: ONE factual sentence of 10 to 25 words based strictly on the quotes\n")
	sb.WriteString("- confidence: a number between 0 and 1 expressing how well the quotes support the milestone\n")
	sb.WriteString("- sources: up to 3 source names that best support the milestone\n")
	fmt.Fprintf(&sb, "- notes: if the quotes contradict each other (for example conflicting dates or outcomes), write %q followed by the differing claims; otherwise an empty string\n\n", model.ContradictionMarker)

	dateText := "unknown"
	if canonical != nil {
		dateText = canonical.String()
	}
	fmt.Fprintf(&sb, "Candidate canonical date: %s\n\n", dateText)

	sb.WriteString("Supporting quotes:\n")
	for i, m := range cluster.Members {
		if i >= maxPromptQuotes {
			fmt.Fprintf(&sb, "(%d more quotes omitted)\n", len(cluster.Members)-maxPromptQuotes)
			break
		}
		quote := strings.Join(strings.Fields(Truncate(m.Text, maxQuoteLength)), " ")
		fmt.Fprintf(&sb, "- (%s) \"%s\" (url: %s)\n", m.SourceName, quote, m.SourceURL)
	}

	return sb.String()
}
