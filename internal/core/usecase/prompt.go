package usecase

import "strings"

const groundingPromptTemplate = "You are a helpful assistant that answers questions ONLY based on the provided context. \n\n" +
	"IMPORTANT RULES:\n" +
	"1. ONLY use information from the provided context\n" +
	"2. If the answer is not in the context, say \"I cannot find this information in the document\"\n" +
	"3. Do not make assumptions or add information not in the context\n" +
	"4. Be direct and specific in your answers\n\n" +
	"Context from document:\n{context}\n\n" +
	"Question: {query}\n\n" +
	"Answer based ONLY on the context above:"

func BuildGroundingPrompt(context, query string) string {
	return strings.NewReplacer("{context}", context, "{query}", query).Replace(groundingPromptTemplate)
}
