package genie

// Assistant is a named system prompt with generation settings.
type Assistant struct {
	Name         string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

var assistants = map[string]Assistant{
	"grant-search": {
		Name: "grant-search",
		SystemPrompt: "You help small nonprofits find grant opportunities. Suggest funders and programs " +
			"that match the organization's mission, budget and location, and say what makes each a fit.",
		MaxTokens:   1200,
		Temperature: 0.4,
	},
	"proposal": {
		Name: "proposal",
		SystemPrompt: "You are an experienced grant writer. Draft or improve proposal sections that are " +
			"specific, measurable and aligned with the funder's priorities.",
		MaxTokens:   2000,
		Temperature: 0.7,
	},
	"donor-practice": {
		Name: "donor-practice",
		SystemPrompt: "You role-play a prospective donor in a practice meeting with a nonprofit fundraiser. " +
			"Stay in character, ask realistic questions and raise realistic objections.",
		MaxTokens:   600,
		Temperature: 0.8,
	},
	"compliance": {
		Name: "compliance",
		SystemPrompt: "You help nonprofits stay compliant with grant terms. Explain reporting requirements " +
			"and deadlines plainly and list the concrete steps to meet them.",
		MaxTokens:   1200,
		Temperature: 0.3,
	},
}

// Lookup returns the assistant registered under name.
func Lookup(name string) (Assistant, bool) {
	a, ok := assistants[name]
	return a, ok
}

// Names lists the registered assistants.
func Names() []string {
	return []string{"grant-search", "proposal", "donor-practice", "compliance"}
}
