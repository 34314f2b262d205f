package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	assert.True(t, ID("4c6a9f00-1b2c-4d5e-8f90-abcdef123456"))

	for _, bad := range []string{
		"",
		"not-an-id",
		"4C6A9F00-1B2C-4D5E-8F90-ABCDEF123456", // uppercase
		"4c6a9f00-1b2c-4d5e-8f90-abcdef12345",  // short
		"4c6a9f001b2c4d5e8f90abcdef123456",     // no hyphens
		"4c6a9f00-1b2c-4d5e-8f90-abcdef1234567",
	} {
		assert.False(t, ID(bad), "should reject %q", bad)
	}
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("student@example.com"))
	assert.True(t, Email("a.b+c@sub.example.org"))

	long := make([]byte, 250)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, Email(string(long)+"@example.com"), "should reject over-length addresses")

	for _, bad := range []string{"", "plain", "a@b", "a b@example.com", "@example.com"} {
		assert.False(t, Email(bad), "should reject %q", bad)
	}
}

func TestStringLen(t *testing.T) {
	assert.True(t, StringLen("abc", 1, 3))
	assert.False(t, StringLen("", 1, 3))
	assert.False(t, StringLen("abcd", 1, 3))
}

func TestIntRange(t *testing.T) {
	assert.True(t, IntRange(0, 0, 100))
	assert.True(t, IntRange(100, 0, 100))
	assert.False(t, IntRange(-1, 0, 100))
	assert.False(t, IntRange(101, 0, 100))
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t,
		"&lt;script&gt;alert(&#39;x&#39;) &amp; &quot;y&quot;&lt;/script&gt;",
		EscapeHTML(`<script>alert('x') & "y"</script>`))
	assert.Equal(t, "plain text", EscapeHTML("plain text"))
}
