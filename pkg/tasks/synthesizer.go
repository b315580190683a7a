package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/briefing/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WeatherData is the typed view of the weather_data slot.
type WeatherData struct {
	Location    string `mapstructure:"location"`
	Temperature int    `mapstructure:"temperature"`
	Condition   string `mapstructure:"condition"`
	Timestamp   string `mapstructure:"timestamp"`
}

// NewsData is the typed view of the news_data slot.
type NewsData struct {
	Topic     string   `mapstructure:"topic"`
	Headlines []string `mapstructure:"headlines"`
	Count     int      `mapstructure:"count"`
	Timestamp string   `mapstructure:"timestamp"`
}

// SynthesisTask turns the gathered weather and news into the briefing text.
type SynthesisTask struct {
	memory
	opts options
}

// NewSynthesisTask creates the synthesis task. With WithGenerator the text
// comes from the generator and the template is the fallback.
func NewSynthesisTask(opts ...Option) *SynthesisTask {
	return &SynthesisTask{opts: newOptions(opts)}
}

func (t *SynthesisTask) Name() string { return SynthesisTaskName }

// Execute requires the weather_data and news_data inputs and publishes
// briefing and generator.
func (t *SynthesisTask) Execute(ctx context.Context, _ domain.RunContext, inputs domain.Inputs) domain.TaskResult {
	log := t.opts.logger.With("task", SynthesisTaskName)
	log.Info("synthesizing daily briefing")

	weather, news, err := DecodeInputs(inputs)
	if err != nil {
		log.Warn("invalid synthesis inputs", "err", err)
		return domain.Fail(err.Error())
	}

	now := t.opts.clock()
	text := RenderBriefing(now, weather, news)
	generator := TemplateGenerator

	if g := t.opts.generator; g != nil {
		generated, err := g.Generate(ctx, Prompt(now, weather, news))
		switch {
		case err != nil:
			log.Warn("generator failed, using template", "generator", g.Name(), "err", err)
		case strings.TrimSpace(generated) == "":
			log.Warn("generator returned empty text, using template", "generator", g.Name())
		default:
			text = strings.TrimSpace(generated)
			generator = g.Name()
		}
	}

	if !t.remember(ctx, domain.SlotBriefing, text, "generator", generator) {
		log.Warn("synthesis abandoned", "err", ctx.Err())
		return domain.Fail("synthesis abandoned: " + ctx.Err().Error())
	}
	log.Debug("daily briefing generated", "generator", generator, "length", len(text))
	return domain.Succeed(domain.Payload{
		"briefing":  text,
		"generator": generator,
	})
}

// DecodeInputs converts the weather_data and news_data payloads into their
// typed views. Numeric fields accept any numeric or string representation.
func DecodeInputs(inputs domain.Inputs) (WeatherData, NewsData, error) {
	var weather WeatherData
	var news NewsData

	raw, ok := inputs[domain.SlotWeather]
	if !ok {
		return weather, news, &domain.SlotError{Slots: []string{domain.SlotWeather}}
	}
	if err := decode(raw, &weather); err != nil {
		return weather, news, fmt.Errorf("decode %s: %w", domain.SlotWeather, err)
	}

	raw, ok = inputs[domain.SlotNews]
	if !ok {
		return weather, news, &domain.SlotError{Slots: []string{domain.SlotNews}}
	}
	if err := decode(raw, &news); err != nil {
		return weather, news, fmt.Errorf("decode %s: %w", domain.SlotNews, err)
	}
	return weather, news, nil
}

func decode(in domain.Payload, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(in))
}

// RenderBriefing renders the built-in briefing template.
func RenderBriefing(now time.Time, weather WeatherData, news NewsData) string {
	location := orDefault(weather.Location, "Unknown")
	condition := orDefault(weather.Condition, "N/A")
	topic := orDefault(news.Topic, "general")

	var b strings.Builder
	fmt.Fprintf(&b, "🌅 Daily Briefing - %s\n\n", now.Format("January 02, 2006"))
	fmt.Fprintf(&b, "📍 Weather Update for %s:\n", location)
	fmt.Fprintf(&b, "Temperature: %d°C\n", weather.Temperature)
	fmt.Fprintf(&b, "Conditions: %s\n\n", condition)
	fmt.Fprintf(&b, "📰 Top %s News Headlines:\n", cases.Title(language.English).String(topic))
	for i, h := range news.Headlines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h)
	}
	b.WriteString("\n📊 Briefing Summary:\n")
	fmt.Fprintf(&b, "Today's weather in %s shows %s conditions with a temperature of %d°C.\n",
		location, strings.ToLower(condition), weather.Temperature)
	fmt.Fprintf(&b, "In %s news, we're seeing %d significant developments that may impact your day.\n\n",
		topic, len(news.Headlines))
	b.WriteString("Stay informed and have a great day! 🌟")
	return b.String()
}

// Prompt builds the instruction handed to a Generator.
func Prompt(now time.Time, weather WeatherData, news NewsData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short, friendly daily briefing for %s.\n", now.Format("January 02, 2006"))
	fmt.Fprintf(&b, "Weather in %s: %d°C, %s.\n", weather.Location, weather.Temperature, weather.Condition)
	fmt.Fprintf(&b, "Top %s headlines:\n", news.Topic)
	for i, h := range news.Headlines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h)
	}
	b.WriteString("Mention the weather first, then list every headline in the given order, then a one-paragraph summary. Plain text, no markdown tables.")
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
