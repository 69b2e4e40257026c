package audiodescricao

import "fmt"

// SensitivePrefix opens descriptions of sensitive content.
const SensitivePrefix = "Sensitive content:"

const promptTemplate = `You are an audio description system for blind and low-vision people.
Respond in %s.
%s

Style rules:
- Use short, direct, natural sentences that read well aloud.
- Start with the main subject, then the action, then the setting and prominent colors.
- Do not say "seems", "maybe" or "the image/photo shows".
- If there is sensitive content (e.g. nudity, violence), begin with "%s" and describe it objectively.
- No emoji, markdown, lists or metadata. Plain running text only.
- Keep the whole answer to about 400 characters.

Now write the audio description.`

var lengthHints = map[Verbosity]string{
	VerbosityShort:    "Write 1 to 2 short sentences.",
	VerbosityStandard: "Write 2 to 4 short sentences.",
	VerbosityLong:     "Write 4 to 6 sentences, still short.",
}

// BuildPrompt returns the instruction sent alongside the image.
func BuildPrompt(lang string, v Verbosity) string {
	hint, ok := lengthHints[v]
	if !ok {
		hint = lengthHints[VerbosityStandard]
	}
	return fmt.Sprintf(promptTemplate, lang, hint, SensitivePrefix)
}
