package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `🌅 Daily Briefing - October 17, 2026

📍 Weather Update for London:
Temperature: 15°C
Conditions: Rainy

📰 Top World News Headlines:
1. First
2. Second

📊 Briefing Summary:
Today's weather in London shows rainy conditions with a temperature of 15°C.`

func TestToMarkdown(t *testing.T) {
	md := ToMarkdown(sample)

	assert.True(t, strings.HasPrefix(md, "# 🌅 Daily Briefing - October 17, 2026\n"))
	assert.Contains(t, md, "## 📍 Weather Update for London:")
	assert.Contains(t, md, "- Temperature: 15°C\n")
	assert.Contains(t, md, "- Conditions: Rainy\n")
	assert.Contains(t, md, "\n1. First\n2. Second\n")
	assert.Contains(t, md, "## 📊 Briefing Summary:")
	assert.Contains(t, md, "\nToday's weather in London shows rainy conditions")
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer(60)(sample)

	require.NoError(t, err)
	assert.Contains(t, out, "First")
	assert.Contains(t, out, "London")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)

	assert.Greater(t, strings.Count(buf.String(), "\n"), 5)
}
