package service

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/tasting-service/internal/event"
	"github.com/iliyamo/tasting-service/internal/model"
	"github.com/iliyamo/tasting-service/internal/queue"
)

// TicketPublisher sends kitchen tickets somewhere a printer can read them.
type TicketPublisher interface {
	PublishKitchenTicket(ctx context.Context, ev queue.KitchenTicketEvent) error
}

// KitchenTickets turns applied FIRE_NEXT ops into kitchen tickets.  Only
// the authority should observe its store with it; a CLIENT's store changes
// by snapshot and would print nothing, but also must not print twice.
type KitchenTickets struct {
	Publisher TicketPublisher
	Log       *log.Logger
	Timeout   time.Duration
}

// Observe is a Store subscriber.  Publishing happens on its own goroutine
// so a slow broker never holds up the mutating caller.
func (k *KitchenTickets) Observe(c event.Change) {
	ev, ok := TicketFor(c)
	if !ok {
		return
	}
	go k.publish(ev)
}

func (k *KitchenTickets) publish(ev queue.KitchenTicketEvent) {
	timeout := k.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := k.Publisher.PublishKitchenTicket(ctx, ev); err != nil {
		if k.Log != nil {
			k.Log.Errorf("publish %s ticket for table %d: %v", ev.Kind, ev.TableID, err)
		}
		return
	}
	if k.Log != nil {
		k.Log.Infof("%s ticket sent: table %d course %d", ev.Kind, ev.TableID, ev.CourseIndex)
	}
}

// TicketFor derives the ticket a change should print, if any.
func TicketFor(c event.Change) (queue.KitchenTicketEvent, bool) {
	op, ok := c.Op.(event.FireNext)
	if !ok {
		return queue.KitchenTicketEvent{}, false
	}
	after := c.After.Table(op.TableID)
	if after == nil || after.Setup == nil || after.Setup.LastFiredCourseID == "" {
		return queue.KitchenTicketEvent{}, false
	}
	line := after.Setup.Line(after.Setup.LastFiredCourseID)
	if line == nil || line.FiredAt == nil {
		return queue.KitchenTicketEvent{}, false
	}

	kind := queue.KindFire
	if before := c.Before.Table(op.TableID); before != nil && before.Setup != nil {
		if prev := before.Setup.Line(line.ID); prev != nil && line.RefireCount > prev.RefireCount {
			kind = queue.KindRefire
		}
	}

	return queue.KitchenTicketEvent{
		TableID:     after.ID,
		TableName:   after.Name,
		Pax:         after.Pax,
		CourseID:    line.ID,
		CourseIndex: line.Index,
		CourseName:  line.Name,
		Kind:        kind,
		SeatDishes:  seatMap(line.SeatDishes),
		SeatSubs:    seatMap(line.SeatSubs),
		ChefNote:    after.Setup.ChefNote,
		FiredAt:     line.FiredAt.UTC().Format(time.RFC3339),
	}, true
}

func seatMap(t model.SeatText) map[int]string {
	if len(t) == 0 {
		return nil
	}
	out := make(map[int]string, len(t))
	for s, v := range t {
		out[int(s)] = v
	}
	return out
}
