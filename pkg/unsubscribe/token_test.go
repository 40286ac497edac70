package unsubscribe_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distribuia/distribuia/pkg/unsubscribe"
)

func newTokenizer(t *testing.T) *unsubscribe.Tokenizer {
	t.Helper()

	tok, err := unsubscribe.New(unsubscribe.Config{
		Secret: "test-secret",
		AppURL: "https://distribuia.com",
	})
	require.NoError(t, err)
	return tok
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()

		_, err := unsubscribe.New(unsubscribe.Config{AppURL: "https://distribuia.com"})
		assert.ErrorIs(t, err, unsubscribe.ErrMissingSecret)
	})

	t.Run("trailing slash trimmed from app url", func(t *testing.T) {
		t.Parallel()

		tok, err := unsubscribe.New(unsubscribe.Config{
			Secret: "s",
			AppURL: "https://distribuia.com/",
		})
		require.NoError(t, err)
		assert.NotContains(t, tok.BuildURL("u1"), "com//api")
	})
}

func TestTokenizer_Generate(t *testing.T) {
	t.Parallel()

	tok := newTokenizer(t)

	t.Run("32 lowercase hex chars", func(t *testing.T) {
		t.Parallel()

		token := tok.Generate("user-123")
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), token)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, tok.Generate("user-123"), tok.Generate("user-123"))
	})

	t.Run("distinct users get distinct tokens", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, tok.Generate("user-123"), tok.Generate("user-456"))
	})

	t.Run("distinct secrets get distinct tokens", func(t *testing.T) {
		t.Parallel()

		other, err := unsubscribe.New(unsubscribe.Config{Secret: "other-secret"})
		require.NoError(t, err)
		assert.NotEqual(t, tok.Generate("user-123"), other.Generate("user-123"))
	})
}

func TestTokenizer_Validate(t *testing.T) {
	t.Parallel()

	tok := newTokenizer(t)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		assert.True(t, tok.Validate("user-123", tok.Generate("user-123")))
	})

	t.Run("token for another user rejected", func(t *testing.T) {
		t.Parallel()

		assert.False(t, tok.Validate("user-456", tok.Generate("user-123")))
	})

	t.Run("malformed input rejected", func(t *testing.T) {
		t.Parallel()

		assert.False(t, tok.Validate("", tok.Generate("user-123")))
		assert.False(t, tok.Validate("user-123", ""))
		assert.False(t, tok.Validate("user-123", "tooshort"))
		assert.False(t, tok.Validate("user-123", tok.Generate("user-123")+"00"))
	})
}

func TestTokenizer_BuildURL(t *testing.T) {
	t.Parallel()

	tok := newTokenizer(t)
	token := tok.Generate("user-123")

	url := tok.BuildURL("user-123")
	assert.Equal(t, "https://distribuia.com/api/user/email-preferences?token="+token+"&user=user-123", url)
}
