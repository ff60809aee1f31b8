package db_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db/dbtest"
)

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	gdb := dbtest.New(t)
	names := []string{"정치", "경제", "기타"}

	require.NoError(t, db.SeedCategories(gdb, names))
	require.NoError(t, db.SeedCategories(gdb, names))

	var count int64
	require.NoError(t, gdb.Model(&db.Category{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestOptionIDAcceptsLooseForms(t *testing.T) {
	cases := map[string]db.OptionID{
		`3`:          3,
		`"2"`:        2,
		`"4. 보기 내용"`: 4,
		`null`:       0,
	}
	for raw, want := range cases {
		var got db.OptionID
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		assert.Equal(t, want, got, raw)
	}

	var bad db.OptionID
	assert.Error(t, json.Unmarshal([]byte(`"four"`), &bad))
}

func TestQuizDecodeRoundTrip(t *testing.T) {
	gdb := dbtest.New(t)

	content := db.QuizContent{
		Question: "다음 중 옳은 것은?",
		Options: []db.QuizOption{
			{ID: 1, Text: "가"}, {ID: 2, Text: "나"}, {ID: 3, Text: "다"}, {ID: 4, Text: "라"},
		},
		Answer:      db.QuizOption{ID: 2, Text: "나"},
		Explanation: "설명",
	}
	blob, err := json.Marshal(content)
	require.NoError(t, err)

	quiz := db.Quiz{Content: blob}
	require.NoError(t, gdb.Create(&quiz).Error)

	var stored db.Quiz
	require.NoError(t, gdb.First(&stored, quiz.ID).Error)
	decoded, err := stored.Decode()
	require.NoError(t, err)
	assert.Equal(t, content, decoded)
}
