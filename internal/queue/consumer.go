package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TicketConsumer reads kitchen.tickets and appends one line per ticket to
// a log file in dir.
type TicketConsumer struct {
	URL   string
	Dir   string
	Log   *log.Logger
	Retry backoff.BackOff // redial policy; RedialBackOff when nil
}

// RedialBackOff doubles from 1s up to a 30s ceiling, without jitter.
func RedialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 30 * time.Second
	b.Reset()
	return b
}

// Run connects to the broker, declares the queue and consumes until the
// process exits.  A message that cannot be handled is rejected without
// requeue so one bad ticket cannot wedge the printer.
func (tc *TicketConsumer) Run() {
	if tc.Log == nil {
		tc.Log = log.New("ticket-printer")
	}
	if tc.Retry == nil {
		tc.Retry = RedialBackOff()
	}
	for {
		conn, err := amqp.Dial(tc.URL)
		if err != nil {
			wait := tc.Retry.NextBackOff()
			tc.Log.Warnf("failed to dial broker: %v; retrying in %s", err, wait)
			time.Sleep(wait)
			continue
		}
		tc.Retry.Reset()

		if err := tc.consumeLoop(conn); err != nil {
			wait := tc.Retry.NextBackOff()
			tc.Log.Warnf("consume loop ended: %v; reconnecting in %s", err, wait)
			_ = conn.Close()
			time.Sleep(wait)
		}
	}
}

func (tc *TicketConsumer) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		tc.Log.Warnf("set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(KitchenTicketsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(KitchenTicketsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := tc.Handle(d.Body); err != nil {
			tc.Log.Errorf("handle ticket failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one ticket and appends it to kitchen.log.
func (tc *TicketConsumer) Handle(body []byte) error {
	var ev KitchenTicketEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	dir := tc.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "kitchen.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatTicket(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatTicket renders a ticket as one log line.
func FormatTicket(ev KitchenTicketEvent) string {
	subs := "[]"
	if len(ev.SeatSubs) > 0 {
		seats := make([]int, 0, len(ev.SeatSubs))
		for s := range ev.SeatSubs {
			seats = append(seats, s)
		}
		sort.Ints(seats)
		parts := make([]string, 0, len(seats))
		for _, s := range seats {
			parts = append(parts, fmt.Sprintf("%d:%s", s, ev.SeatSubs[s]))
		}
		subs = "[" + strings.Join(parts, ",") + "]"
	}
	return fmt.Sprintf("[%s] %s | table=%q (#%d) | pax=%d | course=%d %q | subs=%s | note=%q\n",
		ev.FiredAt, ev.Kind, ev.TableName, ev.TableID, ev.Pax, ev.CourseIndex, ev.CourseName, subs, ev.ChefNote)
}
