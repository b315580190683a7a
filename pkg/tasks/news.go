package tasks

import (
	"context"
	"time"

	"github.com/aretw0/briefing/pkg/adapters/mock"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/aretw0/briefing/pkg/ports"
)

// NewsTask gathers the top headlines of the requested topic.
type NewsTask struct {
	memory
	source ports.HeadlineSource
	opts   options
}

// NewNewsTask creates a news task reading from source. A nil source uses
// the built-in table.
func NewNewsTask(source ports.HeadlineSource, opts ...Option) *NewsTask {
	if source == nil {
		source = mock.NewHeadlines()
	}
	return &NewsTask{source: source, opts: newOptions(opts)}
}

func (t *NewsTask) Name() string { return NewsTaskName }

// Execute reads KeyTopic and KeyNewsCount and publishes topic, headlines,
// count and timestamp. A count of zero or less means the default.
func (t *NewsTask) Execute(ctx context.Context, run domain.RunContext, _ domain.Inputs) domain.TaskResult {
	topic := run.String(domain.KeyTopic, domain.DefaultTopic)
	count := run.Int(domain.KeyNewsCount, domain.DefaultNewsCount)
	if count <= 0 {
		count = domain.DefaultNewsCount
	}
	log := t.opts.logger.With("task", NewsTaskName, "topic", topic, "count", count)
	log.Info("gathering news headlines")

	headlines, err := t.source.Headlines(ctx, topic, count)
	if ctx.Err() != nil {
		log.Warn("headline lookup abandoned", "err", ctx.Err())
		return domain.Fail("headline lookup abandoned: " + ctx.Err().Error())
	}
	if err != nil {
		if t.opts.strict {
			log.Warn("headline lookup failed", "err", err)
			return domain.Fail("headline lookup failed: " + err.Error())
		}
		log.Warn("headline lookup failed, using fallback list", "err", err)
		headlines = mock.FallbackHeadlines(mock.FallbackTopic, count)
		t.remember(ctx, "fallback", err.Error())
	} else {
		t.forget(ctx, "fallback")
	}
	if len(headlines) > count {
		headlines = headlines[:count]
	}

	payload := domain.Payload{
		"topic":     topic,
		"headlines": headlines,
		"count":     len(headlines),
		"timestamp": t.opts.clock().Format(time.RFC3339),
	}
	if !t.remember(ctx, domain.SlotNews, payload.Clone()) {
		return domain.Fail("headline lookup abandoned: " + ctx.Err().Error())
	}
	log.Debug("news data collected", "headlines", len(headlines))
	return domain.Succeed(payload)
}
