package rendering

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// structureFingerprint hashes the DOM shape of a document: the sequence of
// open tag names, shingled into trigrams, folded into a 64-bit simhash.
// Comparing the non-rendered and rendered samples this way shows how much
// structure JavaScript execution adds, independent of text volume.
func structureFingerprint(htmlStr string) uint64 {
	tags := tagSequence(htmlStr)
	if len(tags) == 0 {
		return 0
	}

	tokens := shingle(tags, 3)
	if len(tokens) == 0 {
		// Too few tags for trigrams; hash the raw sequence instead.
		tokens = tags
	}

	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// structureDistance is the Hamming distance between the DOM-shape
// fingerprints of two documents (0-64; lower means more similar).
func structureDistance(a, b string) int {
	return bits.OnesCount64(structureFingerprint(a) ^ structureFingerprint(b))
}

func tagSequence(htmlStr string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	var tags []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			tags = append(tags, string(tn))
		}
	}
}

func shingle(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}
