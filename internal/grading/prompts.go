package grading

import "fmt"

const gradingSystemPrompt = "You are an experienced English teacher who grades student essays. " +
	"Respond strictly in JSON with no extra text."

const nameExtractionSystemPrompt = "You are an assistant specialized in extracting information from text."

const gradingPromptTemplate = `As an experienced English teacher, review the student essay below against the given requirements.

IMPORTANT: your reply must be pure JSON with no preamble, trailing text, or explanation. Start with { and end with }.

Essay requirements:
%s

Student essay:
%s

Review instructions:
1. Spelling: if you find spelling mistakes, list all of them in the first entry of the suggestions array ("recieve -> receive, occured -> occurred").
2. Grammar and phrasing: after spelling (if any), give 3-8 rewrite suggestions. Fix grammar errors first, then show how to express sentences in a more advanced, idiomatic way. Quote the original sentence, give the improved sentence, and explain the reason.
3. Length: if the essay is clearly too short, note it under weaknesses and suggest concrete ways to expand.

Output strictly in this JSON shape:
{
  "score": 85,
  "strengths": "at least two concise points on what the essay does well",
  "weaknesses": "at least two constructive points on its main problems",
  "suggestions": [
    {
      "original_sentence": "quoted sentence needing improvement",
      "revised_sentence": "an improved rewrite",
      "reason": "why the rewrite is better"
    }
  ],
  "summary_comment": "an encouraging overall comment summarizing the key directions for improvement"
}`

const nameExtractionPromptTemplate = `Task: extract the student's name from the beginning or end of the text below. The name usually follows a label such as "Name:" or "Class:", or stands on its own line. Return only the name, nothing else.

Text:
---
%s`

func gradingPrompt(requirements, essayText string) string {
	return fmt.Sprintf(gradingPromptTemplate, requirements, essayText)
}

func nameExtractionPrompt(essayText string) string {
	return fmt.Sprintf(nameExtractionPromptTemplate, essayText)
}
