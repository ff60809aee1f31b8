package crawler

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestNormalizeAuthor(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: "홍길동 기자", want: "홍길동"},
		{in: "파리=유근형 특파원", want: "유근형"},
		{in: "김철수 인턴", want: "김철수"},
		{in: "[이메일] user@x.com 홍길동 기자", want: "홍길동"},
		{in: "이영희 기자 younghee@news.com", want: "이영희"},
		{in: "  ", want: ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeAuthor(tc.in), tc.in)
	}
}

func TestExtractAuthors(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<em class="media_end_head_journalist_name">홍길동 기자</em>
		<em class="media_end_head_journalist_name">서울=김영수 특파원</em>
		<p class="byline_s">무시됨 기자</p>
	</body></html>`)
	assert.Equal(t, "홍길동, 김영수", ExtractAuthors(doc))

	fallback := mustDoc(t, `<html><body><p class="byline_s">박지민 기자 jimin@x.com</p></body></html>`)
	assert.Equal(t, "박지민", ExtractAuthors(fallback))

	none := mustDoc(t, `<html><body><p>no byline</p></body></html>`)
	assert.Equal(t, "unknown", ExtractAuthors(none))
}

func TestExtractAuthorsTruncates(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 40; i++ {
		b.WriteString(`<em class="media_end_head_journalist_name">가나다라 기자</em>`)
	}
	b.WriteString("</body></html>")

	got := ExtractAuthors(mustDoc(t, b.String()))
	assert.Len(t, []rune(got), maxAuthorLen)
}

func TestExtractContentSelectorOrder(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<article>article text</article>
		<div id="dic_area">  main
			body   text </div>
	</body></html>`)
	assert.Equal(t, "main body text", ExtractContent(doc))

	doc = mustDoc(t, `<html><body><div id="dic_area"> </div><article>only article</article></body></html>`)
	assert.Equal(t, "only article", ExtractContent(doc))

	doc = mustDoc(t, `<html><body><p>plain   body</p></body></html>`)
	assert.Equal(t, "plain body", ExtractContent(doc))
}

func TestExtractArticleTextIgnoresBody(t *testing.T) {
	doc := mustDoc(t, `<html><body><nav>메뉴 메뉴 메뉴</nav></body></html>`)
	assert.Equal(t, "", ExtractArticleText(doc))
	assert.Equal(t, "메뉴 메뉴 메뉴", ExtractContent(doc))

	doc = mustDoc(t, `<html><body><nav>메뉴</nav><div id="newsEndContents">본문</div></body></html>`)
	assert.Equal(t, "본문", ExtractArticleText(doc))
}

func TestExtractPublishedAt(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)

	doc := mustDoc(t, `<html><body>
		<span class="_ARTICLE_DATE_TIME" data-date-time="2025-07-01 09:00:00"></span>
		<span class="_ARTICLE_MODIFY_DATE_TIME" data-modify-date-time="2025-07-01 12:00:00"></span>
	</body></html>`)
	got, err := ExtractPublishedAt(doc, loc)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2025, 7, 1, 12, 0, 0, 0, loc)))

	doc = mustDoc(t, `<html><body><span class="_ARTICLE_DATE_TIME" data-date-time="2025-07-01 09:00:00"></span></body></html>`)
	got, err = ExtractPublishedAt(doc, loc)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 9, got.Hour())

	got, err = ExtractPublishedAt(mustDoc(t, `<html></html>`), loc)
	require.NoError(t, err)
	assert.Nil(t, got)

	doc = mustDoc(t, `<html><body><span class="_ARTICLE_DATE_TIME" data-date-time="July 1st"></span></body></html>`)
	_, err = ExtractPublishedAt(doc, loc)
	assert.Error(t, err)
}

func TestExtractTitleTruncates(t *testing.T) {
	long := strings.Repeat("가", 150)
	doc := mustDoc(t, `<html><head><title>`+long+`</title></head></html>`)
	assert.Len(t, []rune(ExtractTitle(doc)), maxTitleLen)
}

func TestArticleIDFromURL(t *testing.T) {
	assert.Equal(t, "0001234567", articleIDFromURL("https://n.news.example/mnews/article/028/0001234567?sid=101"))
	assert.Equal(t, "42", articleIDFromURL("https://n.news.example/article/023/42"))
	assert.Equal(t, "", articleIDFromURL("https://n.news.example/main/list"))
}
