package rag

import (
	"fmt"
	"strings"

	"videoSeek/core"
)

func buildKeywordPrompt(meta core.VideoMeta, query string) string {
	return "You are a helpful assistant specialized in extracting specific and detailed keywords for document retrieval.\n" +
		"Your task is to analyze the given video title, description, and user query to generate concise, specific, and " +
		"highly relevant keywords that capture the precise focus of the user's intent.\n" +
		"These keywords will be used to match subtitles in the video to help identify the exact segments.\n" +
		"### Inputs:\n" +
		fmt.Sprintf("- Video Title: %q\n", meta.Title) +
		fmt.Sprintf("- Video Description: %q\n", meta.Description) +
		fmt.Sprintf("- User Query: %q\n", query) +
		"### Instructions:\n" +
		"1. Analyze the main topic and context of the video based on the title and description.\n" +
		"2. Break down the user's query to understand its specific focus and intent.\n" +
		"3. Generate a list of related keywords or sentences that are:\n" +
		"   - Highly relevant to the user's query.\n" +
		"   - Likely to appear verbatim or in a very similar form in the video's subtitles.\n" +
		"   - Detailed enough to narrow down the search to precise video segments.\n" +
		"4. Avoid overly broad or generic keywords; prioritize specificity and relevance to the query.\n" +
		"### Output Format:\n" +
		"Provide the keywords as a comma-separated list."
}

func buildRankPrompt(meta core.VideoMeta, query string, candidates []core.Candidate) string {
	lines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Timestamp, c.Text))
	}

	return "You are a helpful assistant tasked with identifying the most relevant video timestamps based on a user's query.\n" +
		"The video provides the following context:\n\n" +
		"### Video Title:\n" +
		meta.Title + "\n\n" +
		"### Video Description:\n" +
		meta.Description + "\n\n" +
		"### User Query:\n" +
		query + "\n\n" +
		"### Instructions:\n" +
		"1. Carefully review the provided video title and description to understand the video's main topics.\n" +
		"2. Analyze the user's query to infer their intent and identify the most relevant part of the video.\n" +
		"3. Evaluate the given timestamp-text pairs, selecting the segment(s) that best match the user's query.\n" +
		"4. If multiple timestamps are relevant, prioritize those with clearer and more specific connections to the query.\n\n" +
		"### Timestamp-Text Candidates:\n" +
		strings.Join(lines, "\n") + "\n\n" +
		"### Output Format:\n" +
		"Provide the relevant timestamp(s) and a brief explanation for your choice, formatted as follows:\n\n" +
		"- Timestamp: [HH:MM:SS]\n" +
		"- Reason: [Explanation]\n\n" +
		"If no candidate is relevant, respond with:\n" +
		"\"" + noTimestampMarker + "\""
}
