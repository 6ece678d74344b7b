// Package speak renders assistant replies as interruptible speech.
//
// Playback is chunked at sentence boundaries; between chunks the controller
// checks the barge-in latch, so an interrupt takes effect within one chunk
// at most. Text is sanitised first: LLMs emit markdown and URLs that read
// fine but sound terrible.
package speak

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	identityRe   = regexp.MustCompile(`(?i)\b(as an ai( model)?|i am a language model|i'?m a language model|i am a text-based ai|i'?m a text-based ai)\b`)
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	urlRe        = regexp.MustCompile(`https?://\S+`)
	emphasisRe   = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	substanceRe  = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// Sanitize strips markdown structure and other unpronounceable artefacts
// from an LLM reply, leaving plain sentences for the speaker. Replies that
// hold no substantial content after cleanup come back empty.
func Sanitize(text string) string {
	out := identityRe.ReplaceAllString(text, "")
	out = codeBlockRe.ReplaceAllString(out, " ")
	out = inlineCodeRe.ReplaceAllString(out, "$1")
	out = urlRe.ReplaceAllString(out, "link")
	out = emphasisRe.ReplaceAllString(out, "$1")
	out = headingRe.ReplaceAllString(out, "")
	out = bulletRe.ReplaceAllString(out, "")
	out = whitespaceRe.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)

	if len(substanceRe.FindAllString(out, 2)) < 2 {
		return ""
	}
	return out
}

// maxChunkRunes bounds a single chunk when a sentence runs long; a lower
// bound on interrupt latency depends on chunks staying short.
const maxChunkRunes = 240

var sentenceEndRe = regexp.MustCompile(`([.!?]+)\s+`)

// Chunks splits sanitised text into playback chunks at sentence boundaries.
// Sentences longer than maxChunkRunes are further split at word boundaries.
func Chunks(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	marked := sentenceEndRe.ReplaceAllString(text, "$1\n")
	var chunks []string
	for _, sentence := range strings.Split(marked, "\n") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		chunks = append(chunks, splitLong(sentence)...)
	}
	return chunks
}

func splitLong(sentence string) []string {
	if utf8.RuneCountInString(sentence) <= maxChunkRunes {
		return []string{sentence}
	}

	var out []string
	var cur strings.Builder
	runes := 0
	for _, word := range strings.Fields(sentence) {
		n := utf8.RuneCountInString(word)
		if runes > 0 && runes+1+n > maxChunkRunes {
			out = append(out, cur.String())
			cur.Reset()
			runes = 0
		}
		if runes > 0 {
			cur.WriteByte(' ')
			runes++
		}
		cur.WriteString(word)
		runes += n
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
