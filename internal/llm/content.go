package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	maxPromptContentChars = 2000
	defaultMaxTags        = 5
	defaultMaxExcerpt     = 50
)

// PostContent is the generated excerpt and tag set for a blog post.
type PostContent struct {
	Excerpt string
	Tags    []string
}

// ContentRequest controls what GeneratePostContent produces.
type ContentRequest struct {
	Title        string
	Content      string
	ExistingTags []string
	NeedExcerpt  bool
	NeedTags     bool
}

// truncateForPrompt keeps the first and last halves of long content so the
// prompt sees both the opening and the conclusion.
func truncateForPrompt(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	half := maxChars / 2
	first := strings.TrimSpace(content[:half])
	last := strings.TrimSpace(content[len(content)-half:])
	return first + "\n...\n" + last
}

// GeneratePostContent asks the chat model for an excerpt and/or tags. On any
// generation or parsing failure it degrades to text scraping and finally to
// a first-sentence excerpt, never returning an error for the excerpt path.
func (c *Client) GeneratePostContent(ctx context.Context, req ContentRequest) PostContent {
	result := PostContent{Tags: []string{}}
	if !req.NeedExcerpt && !req.NeedTags {
		return result
	}

	prompt := c.buildContentPrompt(req)
	response, _, err := c.chat(ctx, chatOptions{temperature: 1, jsonMode: true}, []Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		if req.NeedExcerpt {
			result.Excerpt = fallbackExcerpt(req.Content)
		}
		return result
	}

	var parsed struct {
		Excerpt string   `json:"excerpt"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(response)), &parsed); err != nil {
		if req.NeedExcerpt {
			result.Excerpt = extractExcerptFromText(response)
			if result.Excerpt == "" {
				result.Excerpt = fallbackExcerpt(req.Content)
			}
		}
		if req.NeedTags {
			result.Tags = extractTagsFromText(response)
		}
		return result
	}

	if req.NeedExcerpt {
		result.Excerpt = strings.TrimSpace(parsed.Excerpt)
		if result.Excerpt == "" {
			result.Excerpt = fallbackExcerpt(req.Content)
		}
	}
	if req.NeedTags {
		tags := make([]string, 0, len(parsed.Tags))
		for _, tag := range parsed.Tags {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		if len(tags) > defaultMaxTags {
			tags = tags[:defaultMaxTags]
		}
		result.Tags = tags
	}
	return result
}

func (c *Client) buildContentPrompt(req ContentRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I need your help analyzing and enhancing a blog post.\n\nTitle: %s\n\nContent:\n%s\n\n",
		req.Title, truncateForPrompt(req.Content, maxPromptContentChars))

	task := 1
	if req.NeedExcerpt {
		fmt.Fprintf(&b, `Task %d: Generate a comprehensive summary of this blog post.
- Keep it under %d words
- Include the main points and key insights from both the beginning and end of the post
- Highlight the most important concepts and conclusions
- Make it standalone and informative so readers understand what the post is about
- Use active voice and engaging language
- Do not use phrases like "In this blog post" or "This article discusses"

`, task, defaultMaxExcerpt)
		task++
	}
	if req.NeedTags {
		existingTags := req.ExistingTags
		if len(existingTags) > 100 {
			existingTags = existingTags[:100]
		}
		fmt.Fprintf(&b, `Task %d: Generate relevant tags for this blog post.
- Generate at most %d tags
- Each tag should be a single word or short phrase (1-3 words maximum)
- IMPORTANT: Reuse existing tags from our database when they are relevant
- All tags should be properly capitalized (e.g., "Python", "Machine Learning")
- Do not include hashtag symbols (#)
- Focus on specific topics, technologies, concepts or themes

Here are existing tags in our database that you should consider using when appropriate:
%s

`, task, defaultMaxTags, strings.Join(existingTags, ", "))
	}

	b.WriteString("Return your response in the following JSON format:\n{\n")
	if req.NeedExcerpt {
		b.WriteString("  \"excerpt\": \"Your generated excerpt here\",\n")
	}
	if req.NeedTags {
		b.WriteString("  \"tags\": [\"Tag1\", \"Tag2\", \"Tag3\"]\n")
	}
	b.WriteString("}\n")
	return b.String()
}

var excerptIndicators = []string{"excerpt:", "excerpt", "summary:", "summary"}

// extractExcerptFromText scrapes an excerpt out of non-JSON model output.
func extractExcerptFromText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, indicator := range excerptIndicators {
			idx := strings.Index(lower, indicator)
			if idx < 0 {
				continue
			}
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
				return strings.TrimSpace(lines[i+1])
			}
			if rest := strings.TrimSpace(line[idx+len(indicator):]); rest != "" {
				return rest
			}
		}
	}
	return ""
}

var tagsListRe = regexp.MustCompile(`\[(.*?)\]`)

// extractTagsFromText scrapes a bracketed tag list out of non-JSON output.
func extractTagsFromText(text string) []string {
	match := tagsListRe.FindStringSubmatch(text)
	if match == nil {
		return []string{}
	}

	raw := strings.Split(match[1], ",")
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.Trim(strings.TrimSpace(t), `"'`)
		if t != "" {
			tags = append(tags, t)
		}
		if len(tags) == defaultMaxTags {
			break
		}
	}
	return tags
}

// fallbackExcerpt uses the first sentence of the content when generation
// fails entirely.
func fallbackExcerpt(content string) string {
	first, _, _ := strings.Cut(content, ".")
	first = strings.TrimSpace(first)
	if len(first) > 150 {
		return first[:147] + "..."
	}
	return first
}
