package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// CompetitionsExchange exchange событий соревнований.
	CompetitionsExchange = "competitions"
	// StateChangedKey ключ маршрутизации смены состояния соревнования.
	StateChangedKey = "state.changed"
)

// QueueConfig описывает очередь и ключ, которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetCompetitionQueues возвращает очереди событий соревнований.
func GetCompetitionQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "competitions.state", RoutingKey: StateChangedKey},
	}
}

// topology операции объявления, которые выполняет канал.
type topology interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Close() error
}

// SetupChannel открывает канал, объявляет direct exchange и привязывает к нему очереди.
// При ошибке объявления канал закрывается.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := declare(ch, exchange, queues); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

// declare объявляет exchange и очереди. Если что-то не удалось, ch закрывается.
func declare(ch topology, exchange string, queues []QueueConfig) (err error) {
	defer func() {
		if err != nil {
			_ = ch.Close()
		}
	}()

	err = ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	for _, q := range queues {
		_, err = ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			exchange,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue %s with routing key %s: %w", q.QueueName, q.RoutingKey, err)
		}
	}
	return nil
}
