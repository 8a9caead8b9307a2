package clipper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-scheduler/internal/llm"
	"meal-scheduler/internal/recipe"
	"meal-scheduler/internal/shared"
)

type mockSaver struct {
	saved []recipe.Recipe
}

func (m *mockSaver) Save(_ context.Context, rec recipe.Recipe) error {
	m.saved = append(m.saved, rec)
	return nil
}

type mockTextGen struct {
	lastPrompt string
	response   llm.ContentResponse
}

func (m *mockTextGen) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	m.lastPrompt = prompt
	return m.response, nil
}

const recipePage = `<html>
<head><script>tracking();</script><style>.x{}</style></head>
<body>
<nav>Home | Recipes</nav>
<h1>Lentil Soup</h1>
<p>Rinse 200 g of lentils, then simmer for 25 minutes.</p>
<footer>Newsletter signup</footer>
</body>
</html>`

func clippedRecipeJSON(t *testing.T) string {
	t.Helper()
	payload, err := json.Marshal(recipe.Recipe{
		Name:     "Lentil Soup",
		MealType: recipe.MealLunch,
		DietTags: []string{"vegan"},
		Ingredients: []recipe.Ingredient{
			{Name: "lentils", Quantity: "200 g", FreshnessDays: 180},
		},
		Steps:           []string{"Rinse the lentils", "Simmer for 25 minutes"},
		PrepTimeMinutes: 30,
	})
	require.NoError(t, err)
	return string(payload)
}

func TestClipURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(recipePage))
	}))
	defer server.Close()

	saver := &mockSaver{}
	textGen := &mockTextGen{response: llm.ContentResponse{
		Content: clippedRecipeJSON(t),
		Usage:   shared.TokenUsage{PromptTokens: 50, CompletionTokens: 80, TotalTokens: 130},
	}}
	clip := NewClipper(saver, textGen)

	rec, meta, err := clip.ClipURL(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Lentil Soup", rec.Name)
	assert.NotEmpty(t, rec.ID, "clipped recipes get a generated ID")
	require.Len(t, saver.saved, 1)
	assert.Equal(t, rec.ID, saver.saved[0].ID)

	assert.Equal(t, 130, meta.Usage.TotalTokens)

	// noise is stripped before the page reaches the model
	assert.Contains(t, textGen.lastPrompt, "Lentil Soup")
	assert.NotContains(t, textGen.lastPrompt, "tracking()")
	assert.NotContains(t, textGen.lastPrompt, "Newsletter signup")
}

func TestClipURLFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	clip := NewClipper(&mockSaver{}, &mockTextGen{})

	_, _, err := clip.ClipURL(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClipURLBadExtraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(recipePage))
	}))
	defer server.Close()

	saver := &mockSaver{}
	textGen := &mockTextGen{response: llm.ContentResponse{Content: "not json"}}
	clip := NewClipper(saver, textGen)

	_, _, err := clip.ClipURL(context.Background(), server.URL)
	require.Error(t, err)
	assert.Empty(t, saver.saved)
}
