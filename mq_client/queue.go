package mq_client

import (
	"os"

	"github.com/streadway/amqp"
)

var AMQPChannel *amqp.Channel
var Connection *amqp.Connection

func Connect() error {
	cn, err := amqp.Dial(os.Getenv("RABBITMQ_URL"))
	if err != nil {
		return err
	}

	Connection = cn

	return nil
}

func GetChannel() (*amqp.Channel, error) {
	if AMQPChannel != nil {
		return AMQPChannel, nil
	}

	channel, err := Connection.Channel()
	if err != nil {
		return nil, err
	}

	AMQPChannel = channel

	return AMQPChannel, nil
}

func Publish(exchange, routingKey string, payload []byte) error {
	channel, err := GetChannel()
	if err != nil {
		return err
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	return channel.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			Headers:      amqp.Table{},
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Transient,
		},
	)
}
