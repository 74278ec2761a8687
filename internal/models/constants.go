package models

const (
	ContextSeparator = "\n\n"
)

var (
	SystemPromptTemplate = `You are a helpful assistant. Use the provided context to answer the user's questions. If the context does not cover the question, answer from general knowledge and say so.

Context:
%s`

	SystemPromptNoContext = `You are a helpful assistant. No stored documents matched the user's question, so answer from general knowledge.`
)
