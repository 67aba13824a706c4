// Package prompt builds generation prompts for heritage questions and picks
// the answer instruction that fits a question.
package prompt

import "strings"

// AnswerCue ends every prompt. Models that echo the prompt are trimmed up to
// and including it.
const AnswerCue = "Answer:"

// Builder renders the prompt sent to the generative model.
type Builder struct {
	instruction Instruction
	question    string
}

func NewBuilder(instruction Instruction, question string) *Builder {
	return &Builder{instruction: instruction, question: question}
}

func (b *Builder) Build() string {
	var p strings.Builder

	p.WriteString("<task>\n")
	p.WriteString("You are a knowledgeable guide for Indian heritage sites.\n")
	p.WriteString(b.instruction.Task)
	p.WriteString("\n</task>\n\n")

	p.WriteString("<guidelines>\n")
	p.WriteString("- Answer in English, in two or three short paragraphs\n")
	p.WriteString("- Stay factual; if you are not sure about something, say so\n")
	p.WriteString("- Do not include links or image references\n")
	p.WriteString("- Do not repeat the question\n")
	p.WriteString("</guidelines>\n\n")

	p.WriteString("<question>\n")
	p.WriteString(b.question)
	p.WriteString("\n</question>\n\n")
	p.WriteString(AnswerCue)

	return p.String()
}

// StripEcho removes the prompt when the model repeats it before answering.
func StripEcho(prompt, completion string) string {
	out := strings.TrimSpace(completion)
	if strings.HasPrefix(out, prompt) {
		out = strings.TrimPrefix(out, prompt)
	} else if i := strings.LastIndex(out, AnswerCue); i >= 0 && strings.Contains(out[:i], "<question>") {
		out = out[i+len(AnswerCue):]
	}
	return strings.TrimSpace(out)
}
