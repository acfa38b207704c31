package rabbitmq

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection owns the broker connection and the single channel used for publishing.
type Connection struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

func Dial(url string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}

	return &Connection{Conn: conn, Channel: ch}, nil
}

func (c *Connection) Close() error {
	var chErr, connErr error
	if c.Channel != nil {
		chErr = c.Channel.Close()
	}
	if c.Conn != nil {
		connErr = c.Conn.Close()
	}
	return errors.Join(chErr, connErr)
}
