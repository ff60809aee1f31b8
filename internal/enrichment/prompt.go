package enrichment

// promptTemplate is prepended to the article body. The model must answer with
// the JSON shape decoded by ParseResult.
const promptTemplate = `다음 지시를 정확히 따르세요.

[규칙]
1. 요약: 한글 기준 공백 제외 700자 이내로 간결하게 작성.
2. 퀴즈: 요약한 기사 내용을 바탕으로 4지선다 객관식 2문항 작성.
   - 각 문항은 question, options(id 1~4), answer, explanation 키를 모두 포함.
   - answer는 {"id": 보기번호, "text": 보기내용} 형태의 객체로 작성.
3. 용어: 중·고등학생이 이해하기 어려울 만한 단어 4개 선정.
   - 각 항목은 word, meaning 키를 포함.
   - meaning 끝에 마침표를 붙이지 말 것.
   - word에 한자를 쓰지 말 것.
4. 출력은 아래 JSON 스키마와 동일해야 하며 추가 키, 설명, 마크다운은 금지.

[출력 JSON 스키마]
{
  "summary": "…",
  "quizzes": [
    {
      "question": "…",
      "options": [
        { "id": 1, "text": "…" },
        { "id": 2, "text": "…" },
        { "id": 3, "text": "…" },
        { "id": 4, "text": "…" }
      ],
      "answer": { "id": 1, "text": "…" },
      "explanation": "…"
    }
  ],
  "terms": [
    { "word": "…", "meaning": "…" }
  ]
}

[검증]
- JSON으로 파싱 가능해야 함.
- 모든 문자열은 쌍따옴표 사용.
- 누락된 키가 없어야 함.

[입력]
기사 본문:
`

// BuildPrompt returns the full prompt for one article body
func BuildPrompt(content string) string {
	return promptTemplate + content
}
