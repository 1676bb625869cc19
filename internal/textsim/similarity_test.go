package textsim

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine_IdenticalTexts(t *testing.T) {
	for _, text := range []string{
		"remote work increases productivity",
		"机器学习是人工智能的一个分支",
		"x",
	} {
		assert.InDelta(t, 1.0, Cosine(text, text), 0.01, "text %q", text)
	}
}

func TestCosine_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Cosine("", "anything"))
	assert.Equal(t, 0.0, Cosine("anything", ""))
	assert.Equal(t, 0.0, Cosine("", ""))
	// Punctuation-only input tokenizes to nothing.
	assert.Equal(t, 0.0, Cosine("!!!", "anything"))
}

func TestCosine_LexicalOverlapCorrelatesWithScore(t *testing.T) {
	related := Cosine("机器学习是人工智能的一个分支", "深度学习属于机器学习领域")
	unrelated := Cosine("人工智能正在改变世界", "今天的天气很好")

	assert.Greater(t, related, 0.3)
	assert.Less(t, unrelated, 0.5)
	assert.Greater(t, related, unrelated)
}

func TestCosine_SharedTopicEnglish(t *testing.T) {
	score := Cosine("remote work increases productivity", "remote work harms team cohesion")
	assert.InDelta(t, 0.4472, score, 0.001)
}

func TestCosine_Range(t *testing.T) {
	pairs := [][2]string{
		{"a b c", "a b c d e f"},
		{"one two", "three four"},
		{"今天天气很好", "今天天气很好今天天气很好"},
	}
	for _, p := range pairs {
		s := Cosine(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestJaccard(t *testing.T) {
	// |{ai}| / |{ai, ml, dl, weather, sport}| = 1/5
	assert.InDelta(t, 0.2, Jaccard("ai,ml,dl", "ai,weather,sport"), 1e-9)
	assert.Equal(t, 1.0, Jaccard("a,b", "b,a"))
	assert.Equal(t, 0.0, Jaccard("a,b", "c,d"))
}

func TestJaccard_Empty(t *testing.T) {
	// Absence of keywords is not evidence of similarity.
	assert.Equal(t, 0.0, Jaccard("", ""))
	assert.Equal(t, 0.0, Jaccard("a,b", ""))
}

func TestJaccard_Normalization(t *testing.T) {
	// Case-insensitive, trims whitespace, accepts the fullwidth comma.
	assert.Equal(t, 1.0, Jaccard("AI, ML", "ai，ml"))
}

func TestExtractKeywords_RankedByFrequency(t *testing.T) {
	got := ExtractKeywords("go go go rust rust python", 2)
	want := []string{"go", "rust"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExtractKeywords_TiesBreakByFirstOccurrence(t *testing.T) {
	got := ExtractKeywords("beta alpha beta alpha gamma", 3)
	want := []string{"beta", "alpha", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExtractKeywords_Bounds(t *testing.T) {
	assert.Nil(t, ExtractKeywords("", 5))
	assert.Nil(t, ExtractKeywords("some text", 0))
	assert.Len(t, ExtractKeywords("a b", 10), 2)
}

func TestTopicRelated(t *testing.T) {
	assert.True(t, TopicRelated("remote work increases productivity", "remote work harms team cohesion", 0.2))
	assert.False(t, TopicRelated("人工智能正在改变世界", "今天的天气很好", 0.2))
}

func TestMatrix(t *testing.T) {
	texts := []string{
		"remote work increases productivity",
		"remote work harms team cohesion",
		"量子计算机的原理",
	}
	m := Matrix(texts)

	assert.Len(t, m, 3)
	for i := range m {
		assert.Equal(t, 1.0, m[i][i])
		for j := range m {
			assert.Equal(t, m[i][j], m[j][i])
		}
	}
	assert.Greater(t, m[0][1], 0.0)
	assert.Equal(t, 0.0, m[0][2])
}

func TestMatrix_Empty(t *testing.T) {
	assert.Empty(t, Matrix(nil))
}
