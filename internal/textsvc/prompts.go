package textsvc

import "fmt"

const systemPrompt = "You are a writing assistant embedded in a note-taking app. " +
	"Answer with the requested text only, without preamble or commentary."

func titlePrompt(content string) string {
	return fmt.Sprintf("Write a short, descriptive title (at most 8 words) for this note. "+
		"Return only the title, without quotes.\n\nNote:\n%s", content)
}

func tagsPrompt(content string) string {
	return fmt.Sprintf("Suggest up to %d short lowercase tags for this note. "+
		"Return a JSON array of strings and nothing else.\n\nNote:\n%s", MaxTags, content)
}

func transformPrompt(action Action, text string) string {
	switch action {
	case ActionSummarize:
		return fmt.Sprintf("Summarize the following text as a concise bulleted list.\n\nText:\n%s", text)
	case ActionFixGrammar:
		return fmt.Sprintf("Fix spelling, grammar and punctuation in the following text. "+
			"Keep the meaning, tone and formatting.\n\nText:\n%s", text)
	case ActionElaborate:
		return fmt.Sprintf("Expand the following text with more detail and explanation, "+
			"keeping the same voice.\n\nText:\n%s", text)
	}
	return text
}
