package service

import (
	"Abridge_1.0/backend/go/internal/models"
	"fmt"
)

// lengthTargets 给出每个档位的篇幅要求。
var lengthTargets = map[models.SummaryType]string{
	models.SummaryShort:  "2-3 sentences, no more than 80 words",
	models.SummaryMedium: "one paragraph of 120-200 words",
	models.SummaryLong:   "several paragraphs totalling 300-500 words",
}

const promptTemplate = `Please generate a %[1]s summary of the provided content adhering to the following professional standards:

1. Content Requirements:
- Maintain all critical information and key concepts
- Preserve original meaning and context
- Retain technical terms and proper nouns
- Keep numerical data and statistics

2. Quality Standards:
- Use clear, professional language
- Ensure grammatical accuracy
- Maintain logical flow and coherence
- Be factually precise

3. Format Specifications:
- Length: %[2]s
- Style: Professional/academic tone
- Structure: Complete, well-formed sentences
- Language: Match original text language

4. Processing Instructions:
- Exclude examples unless critical to understanding
- Remove redundant information
- Condense without oversimplifying
- Prioritize information by importance

Original Content:
%[3]s

Please provide the summary with these professional considerations in mind.`

// BuildPrompt 为给定档位构造提示词。
func BuildPrompt(text string, summaryType models.SummaryType) string {
	target, ok := lengthTargets[summaryType]
	if !ok {
		target = lengthTargets[models.SummaryMedium]
	}
	return fmt.Sprintf(promptTemplate, summaryType, target, text)
}
