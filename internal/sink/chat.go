package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/hollowgrove/witherlocate/internal/obs"
)

// maxChatAttempts bounds the total attempts (the first try included) before
// a post is dropped and counted rather than retried forever.
const maxChatAttempts = 4

// ChatSink posts a formatted summary of each estimate to a webhook-style
// chat channel. It is single-writer: Write is meant to be called from one
// goroutine per channel (the orchestrator's chat-post goroutine) -- the
// chat client is single-threaded, so all posts go through a one-writer
// queue.
type ChatSink struct {
	webhookURL string
	channelID  string
	client     *http.Client
	limiter    *rate.Limiter
	log        *logrus.Logger

	dropped int
}

// NewChatSink constructs a ChatSink that posts to webhookURL, tagging each
// message with channelID. Attempts are paced by a rate limiter allowing one
// attempt per 200ms.
func NewChatSink(webhookURL, channelID string, log *logrus.Logger) *ChatSink {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ChatSink{
		webhookURL: webhookURL,
		channelID:  channelID,
		client:     &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		log:        log,
	}
}

type chatPayload struct {
	Channel  string  `json:"channel"`
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	ColorTag string  `json:"colorTag"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
}

// Write posts a best-effort summary of est. It retries transient failures
// up to maxChatAttempts, paced by the sink's limiter, then drops the post
// and returns a SinkFailure-flavored error; the caller is expected to log
// and move on rather than block observation intake.
func (s *ChatSink) Write(ctx context.Context, est obs.EventEstimate) error {
	payload := chatPayload{
		Channel:  s.channelID,
		Title:    "wither spawn located",
		Body:     fmt.Sprintf("server=%s radius=%.1f observers=%d", est.ServerLabel, est.ErrorRadius, len(est.Contributing)),
		ColorTag: colorTagFor(est),
		X:        est.X,
		Y:        est.Y,
		Z:        est.Z,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "sink: marshaling chat payload")
	}

	var lastErr error
	for attempt := 1; attempt <= maxChatAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "sink: chat rate limiter")
		}
		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		s.log.WithError(lastErr).WithField("attempt", attempt).Warn("sink: chat post failed, retrying")
	}
	s.dropped++
	return errors.Wrapf(lastErr, "sink: chat post dropped after %d attempts", maxChatAttempts)
}

func (s *ChatSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("chat webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func colorTagFor(est obs.EventEstimate) string {
	if len(est.Flags) > 0 {
		return "orange"
	}
	return "green"
}

// Close is a no-op; ChatSink holds no resources beyond its http.Client.
func (s *ChatSink) Close() error {
	return nil
}

// Dropped reports how many posts were abandoned after exhausting retries.
func (s *ChatSink) Dropped() int {
	return s.dropped
}
