package insights

import (
	"fmt"
	"regexp"
	"strings"
)

// Context carries the lecture facts the prompts reference.
type Context struct {
	ClassCode string
	Title     string
	Professor string
}

func mainIdeasPrompt(chunk string, ctx Context) string {
	return fmt.Sprintf(`You are analyzing a %s lecture by %s titled "%s".

Identify the most important main ideas or key concepts discussed in this
part of the lecture: core concepts and frameworks, key theories or models,
strategic insights, and critical takeaways for MBA students.

Lecture content:
%s

Provide 4-6 main ideas as a numbered list. Each idea should be concise
(8-12 words). Provide only the list, with no additional commentary.`,
		ctx.ClassCode, ctx.Professor, ctx.Title, chunk)
}

func summaryPrompt(text string, ctx Context) string {
	return fmt.Sprintf(`Create a comprehensive summary of this %s lecture by %s on "%s".

The summary should be 150-250 words and cover the topic context, the main
arguments and key points, important frameworks or methodologies, practical
applications mentioned, and key takeaways for exam preparation. Provide
only the summary itself, with no introduction or conclusion around it.

Lecture content:
%s`,
		ctx.ClassCode, ctx.Professor, ctx.Title, text)
}

func keyTermsPrompt(chunk string, ctx Context) string {
	return fmt.Sprintf(`Extract important keywords and key terms from this %s lecture excerpt.

Focus on business terminology, frameworks and models, technical terms,
and concepts likely to appear in exams. Avoid common words.

Lecture content:
%s

Provide 8-12 keywords as a simple comma-separated list with no numbering
and no surrounding words such as "Keywords include".`,
		ctx.ClassCode, chunk)
}

func questionsPrompt(text string, ctx Context, mainIdeas []string) string {
	ideas := make([]string, len(mainIdeas))
	for i, idea := range mainIdeas {
		ideas[i] = "- " + idea
	}
	return fmt.Sprintf(`Generate review questions for this %s lecture on "%s".

Main concepts covered:
%s

Create a mix of factual, analytical, and application questions suitable
for MBA-level exam preparation.

Lecture sample:
%s

Provide 8-12 questions as a numbered list. Provide only the list.`,
		ctx.ClassCode, ctx.Title, strings.Join(ideas, "\n"), text)
}

var listNumbering = regexp.MustCompile(`^\s*(?:\d+[.)]?|[-•*])\s*`)

// parseList parses a numbered or bulleted list response into its items.
func parseList(response string) []string {
	var items []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		clean := listNumbering.ReplaceAllString(line, "")
		if len(clean) > 3 {
			items = append(items, clean)
		}
	}
	return items
}

// parseKeywords parses a comma-separated keywords response. Lines with
// fewer than four comma-separated values are assumed to be preamble.
func parseKeywords(response string) []string {
	keywordsLine := ""
	for _, line := range strings.Split(response, "\n") {
		if strings.Count(line, ",") >= 3 {
			keywordsLine = line
			break
		}
	}
	if keywordsLine == "" {
		keywordsLine = response
	}

	var keywords []string
	for _, kw := range strings.Split(keywordsLine, ",") {
		kw = strings.TrimSpace(kw)
		if len(kw) > 2 {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
