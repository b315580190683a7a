package domain

// RunContext keys understood by the built-in tasks.
const (
	KeyLocation  = "location"
	KeyTopic     = "topic"
	KeyNewsCount = "news_count"
)

// Slot names of the daily briefing tree.
const (
	SlotWeather  = "weather_data"
	SlotNews     = "news_data"
	SlotBriefing = "briefing"
)

// Defaults applied when the RunContext omits a key.
const (
	DefaultLocation  = "San Francisco"
	DefaultTopic     = "technology"
	DefaultNewsCount = 3
)
