package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;5&lt;/b&gt; &amp; O&#39;Neil", EscapeHTML("<b>5</b> & O'Neil"))
	assert.Equal(t, "@anar", EscapeHTML("@anar"))
	assert.Equal(t, "<b>Ad:</b>", Bold("Ad:"))
}
