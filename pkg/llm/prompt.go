// pkg/llm/prompt.go
package llm

import (
	"fmt"
	"unicode/utf8"
)

// 情绪打分系统提示词：要求模型输出可解析的JSON对象
const sentimentSystemPrompt = `You are a financial sentiment analyst. ` +
	`Analyze the sentiment of the given text toward the specified stock. ` +
	`Respond with a JSON object only: {"sentiment_score": <float from -1.0 to 1.0>, "confidence": <float from 0.0 to 1.0>}. ` +
	`-1.0 is extremely bearish, 0 is neutral, 1.0 is extremely bullish.`

// BuildSentimentPrompt 构造单条文本的情绪打分提示词
func BuildSentimentPrompt(symbol, text string) string {
	// 截断过长文本，批处理按token计费；回退到rune边界避免切出非法UTF-8
	const maxChars = 4000
	if len(text) > maxChars {
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return fmt.Sprintf("Stock: %s\n\nText:\n%s", symbol, text)
}
