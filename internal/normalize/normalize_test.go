package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "Dune", expected: "dune"},
		{name: "strips punctuation", input: "Harry Potter and the Philosopher's Stone", expected: "harry potter and the philosophers stone"},
		{name: "strips leading the", input: "The Hobbit", expected: "hobbit"},
		{name: "strips leading a", input: "A Game of Thrones", expected: "game of thrones"},
		{name: "strips leading an", input: "An Absolutely Remarkable Thing", expected: "absolutely remarkable thing"},
		{name: "keeps inner articles", input: "Lord of the Rings", expected: "lord of the rings"},
		{name: "article needs a following space", input: "Theodore Boone", expected: "theodore boone"},
		{name: "bare article is kept", input: "The", expected: "the"},
		{name: "repeated articles", input: "The A Team", expected: "team"},
		{name: "folds diacritics", input: "Les Misérables", expected: "les miserables"},
		{name: "collapses whitespace", input: "  war   and\tpeace ", expected: "war and peace"},
		{name: "punctuation between articles", input: "the... the end", expected: "end"},
		{name: "keeps digits", input: "Fahrenheit 451", expected: "fahrenheit 451"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, String(tt.input))
		})
	}
}

func TestString_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		once := String(s)
		assert.Equal(t, once, String(once))
	})
}

func TestString_IdempotentOnTitles(t *testing.T) {
	words := []string{"The", "a", "An", "by", "Harry's", "Potter", "Élan", "—", "1984", "  ", "the"}
	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(words), 0, 8).Draw(t, "parts")
		s := ""
		for _, p := range parts {
			s += p + " "
		}
		once := String(s)
		assert.Equal(t, once, String(once))
	})
}

func TestHasAuthorMarker(t *testing.T) {
	assert.True(t, HasAuthorMarker("dune by frank herbert"))
	assert.False(t, HasAuthorMarker("by the sword"))
	assert.True(t, HasAuthorMarker("stand by me"))
	assert.False(t, HasAuthorMarker("standby me"))
	assert.False(t, HasAuthorMarker("abby bygone"))
}

func TestSplitAuthor(t *testing.T) {
	title, author, ok := SplitAuthor("stand by me by stephen king")
	assert.True(t, ok)
	assert.Equal(t, "stand by me", title)
	assert.Equal(t, "stephen king", author)

	title, author, ok = SplitAuthor("dune")
	assert.False(t, ok)
	assert.Equal(t, "dune", title)
	assert.Empty(t, author)
}

func TestLastNameToken(t *testing.T) {
	tests := []struct {
		author   string
		expected string
		ok       bool
	}{
		{author: "jk rowling", expected: "rowling", ok: true},
		{author: "tolkien", expected: "tolkien", ok: true},
		{author: "george r r martin", expected: "martin", ok: true},
		{author: "martin jr 2", expected: "jr", ok: true},
		{author: "j", expected: "", ok: false},
		{author: "", expected: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.author, func(t *testing.T) {
			got, ok := LastNameToken(tt.author)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAuthorKey(t *testing.T) {
	assert.Equal(t, "rowling", AuthorKey("jk rowling"))
	assert.Equal(t, "martin", AuthorKey("george r r martin"))
	assert.Equal(t, "homer", AuthorKey("homer"))
	assert.Equal(t, "i", AuthorKey("i"))
	assert.Equal(t, "", AuthorKey(""))
}
