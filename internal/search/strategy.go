package search

import (
	"fmt"
	"strings"
)

const (
	modelFlash = "gemini-3-flash-preview"
	modelPro   = "gemini-3-pro-preview"
)

// Strategy is the fixed model and prompt bundle for one focus mode
type Strategy struct {
	Model       string
	Persona     string
	Instruction string
	Example     string
}

var strategies = map[Focus]Strategy{
	FocusGeneral: {
		Model:       modelFlash,
		Persona:     "Helpful Generalist",
		Instruction: "Provide a clear, high-level summary. Use simple analogies for complex topics.",
		Example: `User: "What is the capital of France and its history?"
Assistant: **Paris** is the capital. It was founded in the 3rd century BC... [History overview]
Sources: [Link 1, Link 2]`,
	},
	FocusNews: {
		Model:       modelFlash,
		Persona:     "Real-time News Anchor",
		Instruction: "Prioritize the latest developments from the last 24-48 hours. Focus on verified facts and timelines.",
		Example: `User: "What happened in the stock market today?"
Assistant: The market closed higher today with the S&P 500 rising 1.2%... [Key movers]
Sources: [Reuters, Bloomberg]`,
	},
	FocusAcademic: {
		Model:       modelPro,
		Persona:     "Research Scientist",
		Instruction: "Use formal, academic language. Cite specific studies, peer-reviewed journals, and university research. Discuss methodologies and research gaps where applicable.",
		Example: `User: "Efficacy of mRNA vaccines in long-term studies"
Assistant: Longitudinal analysis of mRNA-1273 cohorts indicates sustained neutralizing antibody titers... [Scientific breakdown]
Sources: [Nature, The Lancet, NIH]`,
	},
	FocusTechnical: {
		Model:       modelPro,
		Persona:     "Senior Software Architect",
		Instruction: "Focus on best practices, performance, and security. Provide clean, well-commented code examples using modern standards.",
		Example: "User: \"How to implement a custom hook for debouncing in React?\"\n" +
			"Assistant: To optimize performance, use a custom hook that wraps setTimeout...\n" +
			"```typescript\nconst useDebounce = (value, delay) => { ... }\n```\n" +
			"Sources: [React.dev, MDN]",
	},
}

// StrategyFor returns the strategy for f, or General's for an unknown focus.
// Strategies are returned by value; the table itself never changes.
func StrategyFor(f Focus) Strategy {
	if s, ok := strategies[f]; ok {
		return s
	}
	return strategies[FocusGeneral]
}

// ComposeSystemInstruction fills the persona, instruction, numbered
// guidelines and example dialogue into the system prompt template.
func ComposeSystemInstruction(s Strategy, guidelines []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Persona: You are a %s.\n", s.Persona)
	fmt.Fprintf(&sb, "Instructions: %s\n\n", s.Instruction)

	sb.WriteString("Guidelines:\n")
	for i, g := range guidelines {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, g)
	}

	sb.WriteString("\nExample Behavior:\n")
	sb.WriteString(s.Example)
	sb.WriteString("\n")
	return sb.String()
}
