package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/category"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db/dbtest"
)

func TestNameForCodeIsTotal(t *testing.T) {
	known := map[string]string{
		"100": "정치",
		"101": "경제",
		"102": "사회",
		"103": "생활/문화",
		"104": "세계",
		"105": "IT/과학",
	}
	for code, name := range known {
		assert.Equal(t, name, category.NameForCode(code), code)
	}
	for _, code := range []string{"000", "106", "999", "", "abc"} {
		assert.Equal(t, category.EtcName, category.NameForCode(code), code)
	}
}

func TestSectionCode(t *testing.T) {
	cases := []struct{ url, want string }{
		{url: "https://n.news.example/mnews/article/028/0000001?sid=105", want: "105"},
		{url: "https://n.news.example/article/028/0000001?type=1&sid=101&x=2", want: "101"},
		{url: "https://n.news.example/article/028/0000001", want: "000"},
		{url: "https://n.news.example/article/028/0000001?sid=1050", want: "000"},
		{url: "https://n.news.example/article/028/0000001?psid=100", want: "000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, category.SectionCode(tc.url), tc.url)
	}
	assert.Equal(t, "IT/과학", category.ClassifyURL("https://n.news.example/article/028/1?sid=105"))
	assert.Equal(t, "기타", category.ClassifyURL("https://n.news.example/article/028/1"))
}

func TestSectionTablesAreCopies(t *testing.T) {
	s := category.Sections()
	s[0].Name = "mutated"
	assert.Equal(t, "정치", category.Sections()[0].Name)
	assert.Len(t, category.Names(), 7)
	assert.Equal(t, []string{"100", "101", "102", "103", "104", "105"}, category.SectionCodes())
}

func TestResolve(t *testing.T) {
	gdb := dbtest.New(t)

	_, err := category.Resolve(gdb, "정치")
	require.Error(t, err)
	assert.True(t, errors.Is(err, category.ErrCategoryNotFound))

	require.NoError(t, db.SeedCategories(gdb, category.Names()))
	cat, err := category.Resolve(gdb, " 정치 ")
	require.NoError(t, err)
	assert.Equal(t, "정치", cat.Name)
}

func TestClassify(t *testing.T) {
	gdb := dbtest.New(t)
	require.NoError(t, db.SeedCategories(gdb, category.Names()))

	cases := []struct{ link, want string }{
		{link: "https://n.news.example/mnews/article/028/0000001?sid=101", want: "경제"},
		{link: "https://n.news.example/article/028/0000001?sid=999", want: "기타"},
		{link: "https://n.news.example/article/028/0000001", want: "기타"},
	}
	for _, tc := range cases {
		cat, err := category.Classify(context.Background(), gdb, tc.link)
		require.NoError(t, err, tc.link)
		assert.Equal(t, tc.want, cat.Name, tc.link)
	}

	empty := dbtest.New(t)
	_, err := category.Classify(context.Background(), empty, "https://n.news.example/article/028/1?sid=100")
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)
}

func TestSectionCodeFromHTML(t *testing.T) {
	html := `<html><head>
<script>var other = { articleId: "0000009", sectionId: "100" };</script>
<script type="text/javascript">var article = { "articleId": "0000001", "sectionId": "105" };</script>
</head><body></body></html>`

	assert.Equal(t, "105", category.SectionCodeFromHTML(html, "0000001"))
	assert.Equal(t, "100", category.SectionCodeFromHTML(html, "0000009"))
	assert.Equal(t, "", category.SectionCodeFromHTML(html, "0000002"))
	assert.Equal(t, "", category.SectionCodeFromHTML(html, ""))
}

func TestIconURL(t *testing.T) {
	assert.Equal(t, "", category.IconURL("", "정치"))
	assert.Equal(t, "https://cdn.example/article_icon/IT과학.png", category.IconURL("https://cdn.example/", "IT/과학"))
	assert.Equal(t, "https://cdn.example/article_icon/생활문화.png", category.IconURL("https://cdn.example", "생활/문화"))
	assert.Equal(t, "https://cdn.example/article_icon/기타.png", category.IconURL("https://cdn.example", "unknown"))
}
