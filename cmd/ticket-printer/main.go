// Command ticket-printer consumes kitchen tickets from RabbitMQ and appends
// them to logs/kitchen.log.
package main

import (
	"github.com/iliyamo/tasting-service/internal/config"
	"github.com/iliyamo/tasting-service/internal/queue"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger("ticket-printer")
	logger.Infof("consuming %s into %s/kitchen.log", queue.KitchenTicketsQueue, cfg.TicketLogDir)

	consumer := &queue.TicketConsumer{URL: cfg.AMQPURL, Dir: cfg.TicketLogDir, Log: logger}
	consumer.Run()
}
