package models

const (
	ThinkTag = `(?s)<think>.*?</think>`

	SystemPrompt = "You are a helpful assistant. Use the provided context to answer the query."
)

var (
	RAGPromptTemplate = `Context:
%s
Query: %s`
)
