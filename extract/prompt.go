package extract

import (
	"fmt"
	"strings"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "concepts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "summary": {"type": "string"},
          "aliases": {"type": "array", "items": {"type": "string"}},
          "related": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name", "summary"],
        "additionalProperties": false
      }
    },
    "people": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "summary": {"type": "string"},
          "aliases": {"type": "array", "items": {"type": "string"}},
          "related": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name", "summary"],
        "additionalProperties": false
      }
    },
    "sources": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "summary": {"type": "string"},
          "aliases": {"type": "array", "items": {"type": "string"}},
          "related": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name", "summary"],
        "additionalProperties": false
      }
    }
  },
  "required": ["concepts", "people", "sources"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract the knowledge entities from the given transcript or article and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "concepts" are ideas, principles, frameworks and mental models discussed in the text.
- "people" are people mentioned or featured. Use their full name when given.
- "sources" are books, papers, talks and other works the text references.
- Every entry needs a "summary": 1-3 sentences in your own words capturing what the text says about it.
- "aliases" lists alternative names used in the text for the same entity, if any.
- "related" lists names of other entities from THIS response that the entry is connected to.
- Include only entities the text explicitly mentions or clearly implies. Do not hallucinate.
- All three sections are required. Use an empty array for a section with no entries.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Cal Newport argues in Deep Work that focused attention is the superpower of the 21st century."
Output:
{
  "concepts": [
    {"name":"Deep Work","summary":"Focused, distraction-free attention on cognitively demanding tasks, which Newport calls the defining skill of the 21st century.","aliases":["focused attention"],"related":["Cal Newport"]}
  ],
  "people": [
    {"name":"Cal Newport","summary":"Author who argues that focused attention is the superpower of the 21st century.","related":["Deep Work (book)"]}
  ],
  "sources": [
    {"name":"Deep Work (book)","summary":"Book by Cal Newport on the value of focused attention.","related":["Cal Newport"]}
  ]
}`

// buildSystemPrompt creates the extraction system prompt, optionally
// appending names of entities already in the vault so the model reuses
// established names instead of inventing near-duplicates.
func buildSystemPrompt(knownNames []string) string {
	prompt := fmt.Sprintf(extractionPromptTemplate, extractionResponseSchema)
	if len(knownNames) > 0 {
		prompt += "\n\nThe knowledge base already contains these entities. When the text discusses one of them, reuse its exact name:\n" +
			strings.Join(knownNames, ", ")
	}
	return prompt
}

// buildUserPrompt frames the content unit for the model.
func buildUserPrompt(title, text string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString(text)
	return b.String()
}
