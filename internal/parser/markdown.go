package parser

import (
	"bufio"
	"io"
	"strings"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	subjectPrefix  = "S:"
	optionPrefix   = "- ["
)

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
	readingOptions
)

// ParseMarkdown extracts cards from Q:/A: blocks.
//
//	S: Geography
//	Q: The capital of France is ___
//	A: Paris
//	---
//	Q: Largest planet?
//	- [ ] Mars
//	- [x] Jupiter
//
// "S:" sets the subject for the card being read and every card after it;
// cards before any "S:" line use defaultSubject. Option lines "- [ ]" and
// "- [x]" make a multiple-choice card, the checked one being correct.
func ParseMarkdown(r io.Reader, defaultSubject string) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	var records []Record
	var current Record
	var currentBlock []string
	optionCount := 0
	subject := defaultSubject
	currentState := seeking

	flushBlock := func() {
		if len(currentBlock) > 0 {
			content := strings.TrimSpace(strings.Join(currentBlock, "\n"))
			switch currentState {
			case readingQuestion:
				current.Question = content
			case readingAnswer:
				current.Answer = content
			}
			currentBlock = nil
		}
	}

	finishCard := func() {
		flushBlock()
		if current.Question != "" {
			if current.Subject == "" {
				current.Subject = subject
			}
			records = append(records, current)
		}
		current = Record{}
		optionCount = 0
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "---":
			finishCard()

		case strings.HasPrefix(line, subjectPrefix):
			subject = trimPrefix(line, subjectPrefix)
			if currentState != seeking {
				current.Subject = subject
			}

		case strings.HasPrefix(line, questionPrefix):
			if currentState != seeking { // A new question always starts a new card
				finishCard()
			}
			currentState = readingQuestion
			currentBlock = append(currentBlock, trimPrefix(line, questionPrefix))

		case strings.HasPrefix(line, answerPrefix) && currentState != seeking:
			flushBlock()
			currentState = readingAnswer
			currentBlock = append(currentBlock, trimPrefix(line, answerPrefix))

		case strings.HasPrefix(line, optionPrefix) && currentState != seeking:
			text, checked, ok := parseOption(line)
			if !ok {
				currentBlock = append(currentBlock, line)
				continue
			}
			flushBlock()
			currentState = readingOptions
			if current.setOption(optionCount, text) && checked {
				current.CorrectAnswer = string(rune('A' + optionCount))
			}
			optionCount++

		case currentState == readingQuestion || currentState == readingAnswer:
			currentBlock = append(currentBlock, line)
		}
	}

	finishCard() // Finish the very last card in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func trimPrefix(line, prefix string) string {
	content := line[len(prefix):]
	if strings.HasPrefix(content, " ") {
		content = content[1:]
	}
	return content
}

// parseOption reads "- [ ] text" or "- [x] text".
func parseOption(line string) (text string, checked bool, ok bool) {
	rest := line[len(optionPrefix):]
	if len(rest) < 2 || rest[1] != ']' {
		return "", false, false
	}
	switch rest[0] {
	case ' ':
	case 'x', 'X':
		checked = true
	default:
		return "", false, false
	}
	return strings.TrimSpace(rest[2:]), checked, true
}
